package config

const testConfig = `
API:
    BaseURL: http://localhost:8000
    Timeout: 5
Storage:
    Backend: mongodb
    KeyPrefix: "ctiview-test:"
MongoDB:
    ConnectionString: null
    AuthenticationMechanism: null
    SocketTimeout: 2
    TLS:
        Enable: false
        VerifyCertificate: false
        CAFile: null
    Database: CTIVIEW-TEST
LogConfig:
    LogLevel: 3
    LogPath: null
    LogToFile: false
    LogToDB: true
History:
    MaxEntries: 10
    RecentLimit: 5
Risk:
    HighRiskThreshold: 50
UserConfig:
    UpdateCheckFrequency: 14
`

// LoadTestingConfig loads the hard coded testing config
func LoadTestingConfig(mongoURI string) (*Config, error) {
	config, err := newDefaultConfig()
	if err != nil {
		return nil, err
	}

	// Deserialize the yaml file contents into the static config
	if err := parseStaticConfig([]byte(testConfig), &config.S); err != nil {
		return nil, err
	}

	config.S.MongoDB.ConnectionString = mongoURI
	config.S.Version = "v0.0.0+testing"
	config.S.ExactVersion = "v0.0.0+testing"

	// Use the static config to initialize the running config
	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}
