package server

// HTTPServerConfig controls the catalog REST endpoint.
type HTTPServerConfig struct {
	Address      string `mapstructure:"address"       yaml:"address"`
	Port         int    `mapstructure:"port"          yaml:"port"          validate:"gte=0,lte=65535"`
	BaseURL      string `mapstructure:"base_url"      yaml:"base_url"      validate:"required,startswith=/"`
	Debug        bool   `mapstructure:"debug"         yaml:"debug"`
	ReadTimeout  string `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"  yaml:"idle_timeout"`
}

// CatalogServerConfig holds the record policy: which fields are required,
// which fields clients may never set, and the per-client request cap.
type CatalogServerConfig struct {
	MandatoryFields         []string `mapstructure:"mandatory_fields"          yaml:"mandatory_fields"`
	ForbiddenFieldsCreation []string `mapstructure:"forbidden_fields_creation" yaml:"forbidden_fields_creation"`
	ForbiddenFieldsUpdate   []string `mapstructure:"forbidden_fields_update"   yaml:"forbidden_fields_update"`
	MaxFiles                int      `mapstructure:"max_files"                 yaml:"max_files"  validate:"gte=1"`
	RateLimit               int      `mapstructure:"rate_limit"                yaml:"rate_limit" validate:"gte=0"`
}

type MetricsServerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"    validate:"omitempty,startswith=/"`
}
