package commands

import (
	"fmt"

	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/printing"
	"github.com/activecm/ctiview/resources"
	"github.com/urfave/cli"
)

func init() {
	showHistory := cli.Command{
		Name:      "history",
		Usage:     "Print the stored lookup history",
		UsageText: "ctiview history [command-options] [ip]\n\n" +
			"If no IP address is specified, the history of every address is printed.",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
		},
		Action: printHistory,
	}

	clearHistory := cli.Command{
		Name:      "clear-history",
		Usage:     "Remove the lookup history of an IP address",
		ArgsUsage: "<ip>",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: clearIPHistory,
	}

	recent := cli.Command{
		Name:  "recent",
		Usage: "Print the most recently looked up IP addresses",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
			limitFlag,
		},
		Action: printRecent,
	}

	bootstrapCommands(showHistory, clearHistory, recent)
}

func printHistory(c *cli.Context) error {
	var ip string
	if c.Args().Get(0) != "" {
		var err error
		if ip, err = parseIPArg(c); err != nil {
			return err
		}
	}

	res := resources.InitResources(c.String("config"))
	defer res.Close()

	var records []history.Record
	if ip != "" {
		entries, err := res.History.GetHistory(ip)
		if err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
		if len(entries) > 0 {
			records = []history.Record{{IP: ip, Entries: entries}}
		}
	} else {
		var err error
		records, err = res.History.Records(0)
		if err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
	}

	err := printing.PrintHistory(c.App.Writer, records, c.Bool("human-readable"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}

func clearIPHistory(c *cli.Context) error {
	ip, err := parseIPArg(c)
	if err != nil {
		return err
	}

	res := resources.InitResources(c.String("config"))
	defer res.Close()

	if err := res.History.ClearHistory(ip); err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	fmt.Fprintf(c.App.Writer, "Cleared history for %s\n", ip)
	return nil
}

// recentLimit resolves the limit flag against the configured default
func recentLimit(c *cli.Context, res *resources.Resources) (int, error) {
	limit := c.Int("limit")
	if limit < 0 {
		return 0, cli.NewExitError("The limit may not be negative", -1)
	}
	if limit == 0 {
		limit = res.Config.S.History.RecentLimit
	}
	return limit, nil
}

func printRecent(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	defer res.Close()

	limit, err := recentLimit(c, res)
	if err != nil {
		return err
	}

	records, err := res.History.Records(limit)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	err = printing.PrintRecent(c.App.Writer, records, c.Bool("human-readable"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}
