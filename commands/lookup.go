package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/intel"
	"github.com/activecm/ctiview/printing"
	"github.com/activecm/ctiview/reporting"
	"github.com/activecm/ctiview/resources"
	"github.com/activecm/ctiview/util"
	"github.com/urfave/cli"
)

func init() {
	lookup := cli.Command{
		Name:      "lookup",
		Usage:     "Look up the threat intelligence gathered for an IP address",
		ArgsUsage: "<ip>",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
			cli.StringFlag{
				Name:  "export, e",
				Usage: "Also export the report as `FORMAT` (json, csv or pdf)",
			},
			outputFlag,
			openFlag,
			cli.BoolFlag{
				Name:  "watch, w",
				Usage: "Repeat the lookup every Refresh.Interval seconds while auto refresh is enabled",
			},
		},
		Action: lookupIP,
	}

	bootstrapCommands(lookup)
}

// parseIPArg checks the address argument before anything else happens
func parseIPArg(c *cli.Context) (string, error) {
	ip := strings.TrimSpace(c.Args().Get(0))
	if ip == "" {
		return "", cli.NewExitError("Specify an IP address", -1)
	}
	if !intel.ValidIP(ip) {
		return "", cli.NewExitError((&intel.ValidationError{IP: ip}).Error(), -1)
	}
	return ip, nil
}

// parseFormat checks an export format flag, the empty format is allowed
func parseFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" && !util.StringInSlice(format, reporting.Formats) {
		return "", cli.NewExitError((&reporting.FormatError{Format: format}).Error(), -1)
	}
	return format, nil
}

func lookupIP(c *cli.Context) error {
	ip, err := parseIPArg(c)
	if err != nil {
		return err
	}
	format, err := parseFormat(c.String("export"))
	if err != nil {
		return err
	}

	res := resources.InitResources(c.String("config"))
	defer res.Close()

	settings := res.History.LoadSettings()
	interval := res.Config.R.Refresh.Interval
	watch := c.Bool("watch")
	if watch && (!settings.AutoRefresh || interval <= 0) {
		fmt.Fprintln(errWriter(c), "[!] Auto refresh is disabled, run `ctiview settings --auto-refresh --save` to enable it")
		watch = false
	}

	ctx, stop := signalContext()
	defer stop()

	for {
		report, err := runLookup(ctx, c, res, settings, ip)
		if err != nil && !watch {
			return err
		}
		if err != nil {
			fmt.Fprintf(errWriter(c), "[!] %s\n", err.Error())
		}
		if err == nil && format != "" {
			if err := exportReport(c, report, format); err != nil {
				return err
			}
			// only the first result of a watch is exported
			format = ""
		}
		if !watch {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// runLookup performs one lookup, raises the alerts the user asked for and
// prints the report
func runLookup(ctx context.Context, c *cli.Context, res *resources.Resources,
	settings history.Settings, ip string) (*threat.Report, error) {

	report, err := res.Client.Lookup(ctx, ip)
	if err != nil {
		return nil, cli.NewExitError(err.Error(), -1)
	}

	if settings.Notifications {
		for _, alert := range printing.Alerts(report, res.Config.S.Risk.HighRiskThreshold) {
			fmt.Fprintf(errWriter(c), "[!] %s\n", alert)
		}
	}

	err = printing.PrintReport(c.App.Writer, report, res.Config.S.Risk.HighRiskThreshold, c.Bool("human-readable"))
	if err != nil {
		return nil, cli.NewExitError(err.Error(), -1)
	}
	return report, nil
}

// exportReport writes the report in format to the output directory and
// optionally opens it
func exportReport(c *cli.Context, report *threat.Report, format string) error {
	artifact, err := reporting.Export(report, format)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	path, err := reporting.WriteArtifact(c.String("output"), artifact)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	fmt.Fprintf(errWriter(c), "[-] Exported report as %s to %s\n", strings.ToUpper(format), path)

	if c.Bool("open") {
		if err := reporting.Open(path); err != nil {
			fmt.Fprintf(errWriter(c), "[!] Could not open %s: %s\n", path, err.Error())
		}
	}
	return nil
}
