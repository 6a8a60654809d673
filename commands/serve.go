package commands

import (
	"fmt"

	"github.com/activecm/ctiview/resources"
	"github.com/activecm/ctiview/server"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "serve",
		Usage: "Serve lookups, history, analytics and settings as a JSON API",
		Flags: []cli.Flag{
			configFlag,
			cli.StringFlag{
				Name:  "address, a",
				Usage: "Listen on `ADDRESS` instead of Server.Address from the config",
			},
		},
		Action: serve,
	}

	bootstrapCommands(command)
}

func serve(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	defer res.Close()

	address := c.String("address")
	if address == "" {
		address = res.Config.S.Server.Address
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Fprintf(errWriter(c), "[-] Serving the ctiview API on http://%s\n", address)
	if err := server.New(address, res).Start(ctx); err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}
