package commands

import (
	"fmt"

	"github.com/activecm/ctiview/printing"
	"github.com/activecm/ctiview/resources"
	"github.com/urfave/cli"
)

func init() {
	command := cli.Command{
		Name:  "settings",
		Usage: "Show or change the notification and auto refresh preferences",
		UsageText: "ctiview settings [command-options]\n\n" +
			"Changes are only persisted when --save is given, e.g.\n" +
			"ctiview settings --notifications=false --auto-refresh --save",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
			cli.BoolFlag{
				Name:  "notifications",
				Usage: "Alert on botnet C2 servers and high risk addresses",
			},
			cli.BoolFlag{
				Name:  "auto-refresh",
				Usage: "Allow `lookup --watch` to repeat lookups",
			},
			cli.BoolFlag{
				Name:  "save, s",
				Usage: "Persist the changed settings",
			},
		},
		Action: changeSettings,
	}

	bootstrapCommands(command)
}

func changeSettings(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	defer res.Close()

	settings := res.History.LoadSettings()
	changed := false
	if c.IsSet("notifications") {
		settings.Notifications = c.Bool("notifications")
		changed = true
	}
	if c.IsSet("auto-refresh") {
		settings.AutoRefresh = c.Bool("auto-refresh")
		changed = true
	}

	if c.Bool("save") {
		if err := res.History.SaveSettings(settings); err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
		fmt.Fprintln(errWriter(c), "[-] Settings saved")
	} else if changed {
		fmt.Fprintln(errWriter(c), "[!] Settings not saved, rerun with --save to keep them")
	}

	err := printing.PrintSettings(c.App.Writer, settings, c.Bool("human-readable"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}
