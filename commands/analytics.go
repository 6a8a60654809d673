package commands

import (
	"fmt"
	"time"

	"github.com/activecm/ctiview/intel"
	"github.com/activecm/ctiview/printing"
	"github.com/activecm/ctiview/resources"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
)

func init() {
	command := cli.Command{
		Name:  "analytics",
		Usage: "Look up the recently seen IP addresses again and compare their scores",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
			limitFlag,
			cli.BoolFlag{
				Name:  "quiet, q",
				Usage: "Do not draw a progress bar",
			},
		},
		Action: analytics,
	}

	bootstrapCommands(command)
}

func analytics(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	defer res.Close()

	limit, err := recentLimit(c, res)
	if err != nil {
		return err
	}

	ips, err := res.History.ListRecentIPs(limit)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	var results []intel.Result
	if len(ips) > 0 {
		ctx, stop := signalContext()
		defer stop()

		var onDone func(intel.Result)
		var p *mpb.Progress
		if !c.Bool("quiet") {
			// progress bar for the parallel lookups
			p = mpb.New(mpb.WithWidth(20), mpb.WithOutput(errWriter(c)))
			bar := p.AddBar(int64(len(ips)),
				mpb.PrependDecorators(
					decor.Name("\t[-] Threat Lookups:", decor.WC{W: 30, C: decor.DidentRight}),
					decor.CountersNoUnit(" %d / %d ", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(decor.Percentage()),
			)
			start := time.Now()
			onDone = func(intel.Result) {
				bar.IncrBy(1, time.Since(start))
			}
		}

		results = res.Client.LookupMany(ctx, ips, onDone)
		if p != nil {
			p.Wait()
		}

		for _, result := range results {
			if result.Err != nil {
				fmt.Fprintf(errWriter(c), "[!] %s\n", result.Err.Error())
			}
		}
	}

	err = printing.PrintAnalytics(c.App.Writer, results, c.Bool("human-readable"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}
