package commands

import (
	"fmt"

	"github.com/activecm/ctiview/config"
	"github.com/activecm/ctiview/resources"

	"github.com/urfave/cli"
	yaml "gopkg.in/yaml.v2"
)

func init() {
	command := cli.Command{
		Flags: []cli.Flag{
			configFlag,
		},
		Name:   "test-config",
		Usage:  "Check the configuration file for validity",
		Action: testConfiguration,
	}

	bootstrapCommands(command)
}

// testConfiguration prints out the result of parsing the config file
func testConfiguration(c *cli.Context) error {
	// First, print out the config as it was parsed
	conf, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("Failed to config: %s", err.Error()), -1)
	}

	staticConfig, err := yaml.Marshal(conf.S)
	if err != nil {
		return err
	}

	tableConfig, err := yaml.Marshal(conf.T)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "\n%s\n", string(staticConfig))
	fmt.Fprintf(c.App.Writer, "\n%s\n", string(tableConfig))

	// Then test initializing external resources like the storage backend
	res, err := resources.NewResources(conf)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("Failed to open %s storage: %s", conf.S.Storage.Backend, err.Error()), -1)
	}
	return res.Close()
}
