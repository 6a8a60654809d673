package commands

import (
	"github.com/activecm/ctiview/reporting"
	"github.com/activecm/ctiview/resources"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:      "export",
		Usage:     "Look up an IP address and save the report as a file",
		ArgsUsage: "<ip>",
		Flags: []cli.Flag{
			configFlag,
			cli.StringFlag{
				Name:  "format, f",
				Usage: "Export as `FORMAT` (json, csv or pdf)",
				Value: reporting.FormatJSON,
			},
			outputFlag,
			openFlag,
		},
		Action: exportIP,
	}

	bootstrapCommands(command)
}

func exportIP(c *cli.Context) error {
	ip, err := parseIPArg(c)
	if err != nil {
		return err
	}
	format, err := parseFormat(c.String("format"))
	if err != nil {
		return err
	}
	if format == "" {
		format = reporting.FormatJSON
	}

	res := resources.InitResources(c.String("config"))
	defer res.Close()

	ctx, stop := signalContext()
	defer stop()

	report, err := res.Client.Lookup(ctx, ip)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return exportReport(c, report, format)
}
