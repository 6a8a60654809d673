package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/activecm/ctiview/util"
	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
)

//Version is filled at compile time with the git version of ctiview
var Version = "undefined"

//ExactVersion is filled at compile time with the git commit of ctiview
var ExactVersion = "undefined"

//APIURLEnvVar overrides the configured backend base url when set
const APIURLEnvVar = "CTIVIEW_API_URL"

//globalConfigPath is consulted when the user has no config of their own
const globalConfigPath = "/etc/ctiview/config.yaml"

type (
	//Config holds the configuration for the running system
	Config struct {
		R RunningCfg
		S StaticCfg
		T TableCfg
	}
)

// LoadConfig retrieves a configuration in order of precedence: the given
// path, the user's config, the global config, and finally the built in
// defaults when no config file exists at all.
func LoadConfig(cfgPath string) (*Config, error) {
	// a missing .env file is the normal case
	_ = godotenv.Load()

	if cfgPath != "" {
		return loadSystemConfig(cfgPath)
	}

	usr, err := user.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not get user info: %s\n", err.Error())
	} else {
		userConfig := filepath.Join(usr.HomeDir, ".ctiview", "config.yaml")
		if util.Exists(userConfig) {
			return loadSystemConfig(userConfig)
		}
	}

	if util.Exists(globalConfigPath) {
		return loadSystemConfig(globalConfigPath)
	}

	return loadDefaultConfig()
}

// loadSystemConfig attempts to parse a config file
func loadSystemConfig(cfgPath string) (*Config, error) {
	config, err := newDefaultConfig()
	if err != nil {
		return nil, err
	}

	if err := loadStaticConfig(cfgPath, &config.S); err != nil {
		return config, err
	}

	return finishConfig(config)
}

// loadDefaultConfig builds a configuration purely from struct defaults
func loadDefaultConfig() (*Config, error) {
	config, err := newDefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := parseStaticConfig(nil, &config.S); err != nil {
		return config, err
	}
	return finishConfig(config)
}

func newDefaultConfig() (*Config, error) {
	config := &Config{}

	// Initialize table config to the default values
	if err := defaults.Set(&config.T); err != nil {
		return nil, err
	}

	// Initialize static config to the default values
	if err := defaults.Set(&config.S); err != nil {
		return nil, err
	}
	return config, nil
}

// finishConfig applies environment overrides and derives the running config
func finishConfig(config *Config) (*Config, error) {
	if apiURL := os.Getenv(APIURLEnvVar); apiURL != "" {
		config.S.API.BaseURL = strings.TrimRight(apiURL, "/")
	}

	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return config, err
	}
	return config, nil
}

// expandConfig expands environment variables in config strings
func expandConfig(reflected reflect.Value) {
	for i := 0; i < reflected.NumField(); i++ {
		f := reflected.Field(i)
		// process sub configs
		if f.Kind() == reflect.Struct {
			expandConfig(f)
		} else if f.Kind() == reflect.String {
			f.SetString(os.ExpandEnv(f.String()))
		} else if f.Kind() == reflect.Slice && f.Type().Elem().Kind() == reflect.String {
			strs := f.Interface().([]string)
			for i, str := range strs {
				strs[i] = os.ExpandEnv(str)
			}
			f.Set(reflect.ValueOf(strs))
		}
	}
}
