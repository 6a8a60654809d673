package resources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/activecm/ctiview/config"
	"github.com/activecm/ctiview/database"
	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/intel"
	"github.com/activecm/ctiview/storage"
	log "github.com/sirupsen/logrus"
)

type (
	// Resources provides a data structure for passing system Resources
	Resources struct {
		Config  *config.Config
		Log     *log.Logger
		Store   storage.KeyValue
		History *history.Store
		Client  *intel.Client
		DB      *database.DB
		closers []io.Closer
	}
)

// InitResources grabs the configuration file and intitializes the configuration data
// returning a *Resources object which has all of the necessary configuration information
func InitResources(userConfig string) *Resources {
	conf, err := config.LoadConfig(userConfig)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Failed to config: %s\n", err.Error())
		os.Exit(-1)
	}

	res, err := NewResources(conf)
	if err != nil {
		fmt.Fprintf(os.Stdout, "Failed to open %s storage: %s\n", conf.S.Storage.Backend, err.Error())
		os.Exit(-1)
	}
	return res
}

// NewResources wires the logger, the configured storage backend, the
// history store and the lookup client together
func NewResources(conf *config.Config) (*Resources, error) {
	// Fire up the logging system
	logger := initLogger(&conf.S.Log)

	if conf.S.Log.LogToFile {
		if err := addFileLogger(logger, conf.R.Log.LogPath); err != nil {
			fmt.Fprintf(os.Stdout, "Failed to prepare log directory %s: %s\n", conf.R.Log.LogPath, err.Error())
		}
	}

	r := &Resources{
		Config: conf,
		Log:    logger,
	}

	var err error
	switch conf.S.Storage.Backend {
	case config.BackendMemory:
		r.Store = storage.NewMemory()
	case config.BackendFile:
		r.Store, err = storage.NewFile(conf.R.Storage.Path)
	case config.BackendRedis:
		var rdb *storage.Redis
		rdb, err = storage.DialRedis(context.Background(), conf.S.Storage.RedisURL, conf.S.Storage.KeyPrefix)
		if err == nil {
			r.Store = rdb
			r.closers = append(r.closers, rdb)
		}
	case config.BackendMongoDB:
		err = r.openMongoDB()
	default:
		err = fmt.Errorf("unknown storage backend %q", conf.S.Storage.Backend)
	}
	if err != nil {
		r.Close()
		return nil, err
	}

	logger.WithFields(log.Fields{
		"backend": conf.S.Storage.Backend,
		"api":     conf.S.API.BaseURL,
	}).Debug("Resources initialized")

	r.History = history.NewStore(r.Store, logger, conf.S.History.MaxEntries)
	r.Client = intel.NewClient(
		conf.S.API.BaseURL,
		&http.Client{Timeout: conf.R.API.Timeout},
		r.History,
		logger,
	)
	return r, nil
}

// openMongoDB connects to MongoDB, opens the key-value collection and
// starts logging to the database when requested
func (r *Resources) openMongoDB() error {
	db, err := database.NewDB(r.Config, r.Log)
	if err != nil {
		return err
	}
	r.DB = db
	r.closers = append(r.closers, db)

	kv, err := database.NewKeyValueStore(db, r.Config.T.Storage.KeyValueTable)
	if err != nil {
		return err
	}
	r.Store = kv

	//Begin logging to the database
	if r.Config.S.Log.LogToDB {
		err = addMongoLogger(r.Log, db.Session, db.GetSelectedDB(), r.Config.T.Log.LogTable)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Failed to log to MongoDB: %s\n", err.Error())
		}
	}
	return nil
}

// Close releases the storage connections
func (r *Resources) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}
