package main

import (
	"os"

	"github.com/activecm/ctiview/commands"
	"github.com/activecm/ctiview/config"
	"github.com/urfave/cli"
)

// Entry point of ctiview
func main() {
	app := cli.NewApp()
	app.Name = "ctiview"
	app.Usage = "Look up IP addresses against a threat intelligence aggregator."
	app.ErrWriter = os.Stderr

	// Change the version string with updates so that a quick help command will
	// let the testers know what version of ctiview they're on
	app.Version = config.Version

	// Define commands used with this application
	app.Commands = commands.Commands()
	cli.VersionPrinter = commands.GetVersionPrinter()

	app.Run(os.Args)
}
