package commands

import (
	"fmt"

	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "version",
		Usage: "Show ctiview version and check for updates",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: func(c *cli.Context) error {
			GetVersionPrinter()(c)
			return nil
		},
	}

	bootstrapCommands(command)
}

// GetVersionPrinter prints the version followed by a notice when a newer
// release exists
func GetVersionPrinter() func(*cli.Context) {
	return func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "%s version %s\n", c.App.Name, c.App.Version)
		fmt.Fprint(c.App.Writer, updateCheck(c.String("config")))
	}
}
