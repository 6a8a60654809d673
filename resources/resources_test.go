package resources

import (
	"path/filepath"
	"testing"

	"github.com/activecm/ctiview/config"
	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/storage"
	"github.com/alicebob/miniredis/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testingConfig(t *testing.T) *config.Config {
	conf, err := config.LoadTestingConfig("")
	require.NoError(t, err)
	conf.S.Log.LogToDB = false
	return conf
}

func TestNewResourcesMemory(t *testing.T) {
	conf := testingConfig(t)
	conf.S.Storage.Backend = config.BackendMemory

	res, err := NewResources(conf)
	require.NoError(t, err)
	defer res.Close()

	assert.IsType(t, &storage.Memory{}, res.Store)
	assert.NotNil(t, res.History)
	assert.NotNil(t, res.Client)
	assert.Nil(t, res.DB)
	assert.Equal(t, log.DebugLevel, res.Log.Level)
}

func TestNewResourcesFile(t *testing.T) {
	conf := testingConfig(t)
	conf.S.Storage.Backend = config.BackendFile
	conf.R.Storage.Path = filepath.Join(t.TempDir(), "storage.json")

	res, err := NewResources(conf)
	require.NoError(t, err)
	defer res.Close()

	file, ok := res.Store.(*storage.File)
	require.True(t, ok)
	assert.Equal(t, conf.R.Storage.Path, file.Path())

	res.History.RecordLookup("203.0.113.5", history.Entry{Timestamp: "2026-10-19T08:30:00.000Z", ThreatScore: 12})
	ips, err := res.History.ListRecentIPs(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"203.0.113.5"}, ips)
}

func TestNewResourcesRedis(t *testing.T) {
	server := miniredis.RunT(t)
	conf := testingConfig(t)
	conf.S.Storage.Backend = config.BackendRedis
	conf.S.Storage.RedisURL = "redis://" + server.Addr()

	res, err := NewResources(conf)
	require.NoError(t, err)

	require.NoError(t, res.History.SaveSettings(history.Settings{Notifications: false, AutoRefresh: true}))
	assert.True(t, server.Exists("ctiview-test:settings"))
	assert.NoError(t, res.Close())
}

func TestNewResourcesRedisUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	conf := testingConfig(t)
	conf.S.Storage.Backend = config.BackendRedis
	conf.S.Storage.RedisURL = "redis://" + addr

	_, err := NewResources(conf)
	assert.Error(t, err)
}

func TestNewResourcesFileLogger(t *testing.T) {
	conf := testingConfig(t)
	conf.S.Storage.Backend = config.BackendMemory
	conf.S.Log.LogToFile = true
	conf.R.Log.LogPath = t.TempDir()

	res, err := NewResources(conf)
	require.NoError(t, err)
	defer res.Close()

	assert.NotEmpty(t, res.Log.Hooks[log.InfoLevel])
}

func TestInitLoggerLevels(t *testing.T) {
	levels := map[int]log.Level{
		0: log.ErrorLevel,
		1: log.WarnLevel,
		2: log.InfoLevel,
		3: log.DebugLevel,
	}
	for cfgLevel, expected := range levels {
		logger := initLogger(&config.LogStaticCfg{LogLevel: cfgLevel})
		assert.Equal(t, expected, logger.Level, "LogLevel %d", cfgLevel)
	}
}

func TestNewResourcesMongoDB(t *testing.T) {
	res := InitIntegrationTestingResources(t)

	require.NotNil(t, res.DB)
	res.History.RecordLookup("203.0.113.5", history.Entry{Timestamp: "2026-10-19T08:30:00.000Z", ThreatScore: 40})
	entries, err := res.History.GetHistory("203.0.113.5")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, res.History.ClearHistory("203.0.113.5"))
	res.DB.Session.DB(res.DB.GetSelectedDB()).DropDatabase()
}
