package config

type (
	//TableCfg is the container for other table config sections
	TableCfg struct {
		Log     LogTableCfg
		Storage StorageTableCfg
	}

	//LogTableCfg contains the configuration for logging
	LogTableCfg struct {
		LogTable string `default:"logs"`
	}

	//StorageTableCfg names the collection backing the key-value store
	StorageTableCfg struct {
		KeyValueTable string `default:"kv"`
	}
)
