package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		HTTP: HTTPServerConfig{
			Address:      "",
			Port:         8888,
			BaseURL:      "/api",
			Debug:        false,
			ReadTimeout:  "30s",
			WriteTimeout: "30s",
			IdleTimeout:  "120s",
		},

		Metadata: MetadataServerConfig{
			Type:    "sqlite",
			Workers: 10,
			SQLite: MetadataSQLiteConfig{
				Path: "./filecatalog.db",
			},
			Badger: MetadataBadgerConfig{
				Path:     "./filecatalog.badger",
				InMemory: false,
			},
		},

		Catalog: CatalogServerConfig{
			MandatoryFields:         []string{"uid", "checksum", "locations"},
			ForbiddenFieldsCreation: []string{"id", "_id", "meta_modify_date"},
			ForbiddenFieldsUpdate:   []string{"uid"},
			MaxFiles:                10000,
			RateLimit:               10,
		},

		Metrics: MetricsServerConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("http.address", defaults.HTTP.Address)
	viper.SetDefault("http.port", defaults.HTTP.Port)
	viper.SetDefault("http.base_url", defaults.HTTP.BaseURL)
	viper.SetDefault("http.debug", defaults.HTTP.Debug)
	viper.SetDefault("http.read_timeout", defaults.HTTP.ReadTimeout)
	viper.SetDefault("http.write_timeout", defaults.HTTP.WriteTimeout)
	viper.SetDefault("http.idle_timeout", defaults.HTTP.IdleTimeout)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.workers", defaults.Metadata.Workers)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)
	viper.SetDefault("metadata.badger.path", defaults.Metadata.Badger.Path)
	viper.SetDefault("metadata.badger.in_memory", defaults.Metadata.Badger.InMemory)

	viper.SetDefault("catalog.mandatory_fields", defaults.Catalog.MandatoryFields)
	viper.SetDefault("catalog.forbidden_fields_creation", defaults.Catalog.ForbiddenFieldsCreation)
	viper.SetDefault("catalog.forbidden_fields_update", defaults.Catalog.ForbiddenFieldsUpdate)
	viper.SetDefault("catalog.max_files", defaults.Catalog.MaxFiles)
	viper.SetDefault("catalog.rate_limit", defaults.Catalog.RateLimit)

	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.path", defaults.Metrics.Path)
}
