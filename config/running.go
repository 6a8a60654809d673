package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/activecm/ctiview/util"
	"github.com/activecm/mgosec"
	"github.com/blang/semver"
)

type (
	//RunningCfg holds configuration options that are parsed at run time
	RunningCfg struct {
		API     APIRunningCfg
		Storage StorageRunningCfg
		MongoDB MongoDBRunningCfg
		Log     LogRunningCfg
		Refresh RefreshRunningCfg
		Version semver.Version
	}

	//APIRunningCfg holds the parsed backend request timeout
	APIRunningCfg struct {
		Timeout time.Duration
	}

	//StorageRunningCfg holds the expanded storage file path
	StorageRunningCfg struct {
		Path string
	}

	//MongoDBRunningCfg holds parsed information for connecting to MongoDB
	MongoDBRunningCfg struct {
		AuthMechanismParsed mgosec.AuthMechanism
		SocketTimeout       time.Duration
		TLS                 struct {
			TLSConfig *tls.Config
		}
	}

	//LogRunningCfg holds the expanded log directory
	LogRunningCfg struct {
		LogPath string
	}

	//RefreshRunningCfg holds the parsed auto refresh interval
	RefreshRunningCfg struct {
		Interval time.Duration
	}
)

// initRunningConfig uses data in the static config initialize
// the passed in running config
func initRunningConfig(static *StaticCfg, running *RunningCfg) error {
	var err error

	switch static.Storage.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongoDB:
	default:
		return fmt.Errorf("unknown storage backend %q", static.Storage.Backend)
	}

	if static.History.MaxEntries <= 0 {
		return fmt.Errorf("History.MaxEntries must be positive, got %d", static.History.MaxEntries)
	}

	if static.API.Timeout < 0 || static.Refresh.Interval < 0 {
		return fmt.Errorf("timeouts and intervals may not be negative")
	}

	running.API.Timeout = time.Duration(static.API.Timeout) * time.Second
	running.Refresh.Interval = time.Duration(static.Refresh.Interval) * time.Second
	running.Storage.Path = util.ExpandHome(static.Storage.Path)
	running.Log.LogPath = util.ExpandHome(static.Log.LogPath)

	// set the socket time out in hours
	running.MongoDB.SocketTimeout = time.Duration(static.MongoDB.SocketTimeout) * time.Hour

	//parse the tls configuration
	if static.MongoDB.TLS.Enabled {
		tlsConf := &tls.Config{}
		if !static.MongoDB.TLS.VerifyCertificate {
			tlsConf.InsecureSkipVerify = true
		}
		if len(static.MongoDB.TLS.CAFile) > 0 {
			pem, err := ioutil.ReadFile(static.MongoDB.TLS.CAFile)
			if err != nil {
				return fmt.Errorf("could not read MongoDB CA file: %v", err)
			}
			tlsConf.RootCAs = x509.NewCertPool()
			tlsConf.RootCAs.AppendCertsFromPEM(pem)
		}
		running.MongoDB.TLS.TLSConfig = tlsConf
	}

	//parse out the mongo authentication mechanism
	authMechanism, err := mgosec.ParseAuthMechanism(
		static.MongoDB.AuthMechanism,
	)
	if err != nil {
		authMechanism = mgosec.None
		fmt.Println("[!] Could not parse MongoDB authentication mechanism")
	}
	running.MongoDB.AuthMechanismParsed = authMechanism

	running.Version, err = semver.ParseTolerant(static.Version)
	if err != nil {
		// development builds are not tagged
		running.Version = semver.Version{}
	}
	return nil
}
