package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
)

var (
	allCommands []cli.Command

	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "Use a given `CONFIG_FILE` when running this command",
		Value: "",
	}

	humanFlag = cli.BoolFlag{
		Name:  "human-readable, H",
		Usage: "Print a table instead of csv",
	}

	limitFlag = cli.IntFlag{
		Name:  "limit, l",
		Usage: "Show at most `N` addresses, 0 uses History.RecentLimit from the config",
		Value: 0,
	}

	outputFlag = cli.StringFlag{
		Name:  "output, o",
		Usage: "Write exported reports to `DIRECTORY`",
		Value: ".",
	}

	openFlag = cli.BoolFlag{
		Name:  "open",
		Usage: "Open the exported report with the default application",
	}
)

// bootstrapCommands simply adds a given command to the allCommands array
func bootstrapCommands(commands ...cli.Command) {
	for _, command := range commands {
		allCommands = append(allCommands, command)
	}
}

// Commands provides all of the defined commands to the front end
func Commands() []cli.Command {
	return allCommands
}

// signalContext is cancelled when the user interrupts the program
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// errWriter is where notices and alerts go so stdout stays parseable
func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
