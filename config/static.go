package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Storage backends understood by Storage.Backend
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendRedis   = "redis"
	BackendMongoDB = "mongodb"
)

type (
	//StaticCfg is the container for other static config sections
	StaticCfg struct {
		API          APIStaticCfg     `yaml:"API"`
		Storage      StorageStaticCfg `yaml:"Storage"`
		MongoDB      MongoDBStaticCfg `yaml:"MongoDB"`
		Log          LogStaticCfg     `yaml:"LogConfig"`
		History      HistoryStaticCfg `yaml:"History"`
		Risk         RiskStaticCfg    `yaml:"Risk"`
		Refresh      RefreshStaticCfg `yaml:"Refresh"`
		Server       ServerStaticCfg  `yaml:"Server"`
		UserConfig   UserCfgStaticCfg `yaml:"UserConfig"`
		Version      string
		ExactVersion string
	}

	//APIStaticCfg describes how to reach the threat aggregation backend
	APIStaticCfg struct {
		BaseURL string `yaml:"BaseURL" default:"http://localhost:8000"`
		// Timeout is in seconds, 0 waits forever
		Timeout int `yaml:"Timeout" default:"0"`
	}

	//StorageStaticCfg selects where lookup history and settings are kept
	StorageStaticCfg struct {
		Backend   string `yaml:"Backend" default:"file"`
		Path      string `yaml:"Path" default:"~/.ctiview/storage.json"`
		KeyPrefix string `yaml:"KeyPrefix" default:"ctiview:"`
		RedisURL  string `yaml:"RedisURL" default:"redis://localhost:6379/0"`
	}

	//MongoDBStaticCfg contains the means for connecting to MongoDB
	MongoDBStaticCfg struct {
		ConnectionString string       `yaml:"ConnectionString" default:"mongodb://localhost:27017"`
		AuthMechanism    string       `yaml:"AuthenticationMechanism"`
		SocketTimeout    int          `yaml:"SocketTimeout" default:"2"`
		TLS              TLSStaticCfg `yaml:"TLS"`
		Database         string       `yaml:"Database" default:"ctiview"`
	}

	//TLSStaticCfg contains the means for connecting to MongoDB over TLS
	TLSStaticCfg struct {
		Enabled           bool   `yaml:"Enable" default:"false"`
		VerifyCertificate bool   `yaml:"VerifyCertificate" default:"false"`
		CAFile            string `yaml:"CAFile"`
	}

	//LogStaticCfg contains the configuration for logging
	LogStaticCfg struct {
		LogLevel  int    `yaml:"LogLevel" default:"2"`
		LogPath   string `yaml:"LogPath" default:"~/.ctiview/logs"`
		LogToFile bool   `yaml:"LogToFile" default:"false"`
		LogToDB   bool   `yaml:"LogToDB" default:"false"`
	}

	//HistoryStaticCfg bounds the stored lookup history
	HistoryStaticCfg struct {
		MaxEntries  int `yaml:"MaxEntries" default:"10"`
		RecentLimit int `yaml:"RecentLimit" default:"5"`
	}

	//RiskStaticCfg controls when a report is flagged as high risk
	RiskStaticCfg struct {
		HighRiskThreshold float64 `yaml:"HighRiskThreshold" default:"50"`
	}

	//RefreshStaticCfg controls the auto refresh loop, Interval is in seconds
	RefreshStaticCfg struct {
		Interval int `yaml:"Interval" default:"30"`
	}

	//ServerStaticCfg controls the local HTTP API
	ServerStaticCfg struct {
		Address string `yaml:"Address" default:"127.0.0.1:8080"`
	}

	//UserCfgStaticCfg contains settings the user is likely to tweak
	UserCfgStaticCfg struct {
		UpdateCheckFrequency int `yaml:"UpdateCheckFrequency" default:"14"`
	}
)

// loadStaticConfig attempts to parse a config file
func loadStaticConfig(cfgPath string, config *StaticCfg) error {
	_, err := os.Stat(cfgPath)

	if os.IsNotExist(err) {
		return err
	}

	cfgFile, err := ioutil.ReadFile(cfgPath)
	if err != nil {
		return err
	}

	return parseStaticConfig(cfgFile, config)
}

// parseStaticConfig deserializes yaml on top of the values already present
// in config and cleans up the result
func parseStaticConfig(cfgFile []byte, config *StaticCfg) error {
	err := yaml.Unmarshal(cfgFile, config)

	if err != nil {
		return fmt.Errorf("failed to read config: %v", err)
	}

	// expand env variables, config is a pointer
	// so we have to call elem on the reflect value
	expandConfig(reflect.ValueOf(config).Elem())

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))

	// clean all filepaths
	if config.Log.LogPath != "" {
		config.Log.LogPath = filepath.Clean(config.Log.LogPath)
	}
	if config.Storage.Path != "" {
		config.Storage.Path = filepath.Clean(config.Storage.Path)
	}

	// grab the version constants set by the build process
	config.Version = Version
	config.ExactVersion = ExactVersion

	return nil
}
