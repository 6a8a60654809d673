package resources

import (
	"os"
	"testing"

	"github.com/activecm/ctiview/config"
	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/intel"
	"github.com/activecm/ctiview/storage"
	"github.com/sirupsen/logrus/hooks/test"
)

// MongoURIEnvVar names the MongoDB server used by integration tests
const MongoURIEnvVar = "CTIVIEW_TEST_MONGODB_URI"

//InitTestResources creates an in memory resource bundle whose lookup
//client talks to apiURL. Log output is captured by the returned hook.
func InitTestResources(t *testing.T, apiURL string) (*Resources, *test.Hook) {
	conf, err := config.LoadTestingConfig("")
	if err != nil {
		t.Fatal(err)
	}
	conf.S.Storage.Backend = config.BackendMemory
	conf.S.API.BaseURL = apiURL

	logger, hook := test.NewNullLogger()
	kv := storage.NewMemory()
	store := history.NewStore(kv, logger, conf.S.History.MaxEntries)

	return &Resources{
		Config:  conf,
		Log:     logger,
		Store:   kv,
		History: store,
		Client:  intel.NewClient(apiURL, nil, store, logger),
	}, hook
}

//InitIntegrationTestingResources creates a default testing
//resource bundle for use with integration testing.
//The MongoDB server is contacted via the URI provided
//in the CTIVIEW_TEST_MONGODB_URI environment variable.
func InitIntegrationTestingResources(t *testing.T) *Resources {
	if testing.Short() {
		t.Skip()
	}

	mongoURI := os.Getenv(MongoURIEnvVar)
	if mongoURI == "" {
		t.Skip(MongoURIEnvVar + " is required to run ctiview integration tests")
	}

	conf, err := config.LoadTestingConfig(mongoURI)
	if err != nil {
		t.Fatal(err)
	}

	res, err := NewResources(conf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { res.Close() })
	return res
}
