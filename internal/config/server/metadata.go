package server

// MetadataServerConfig holds metadata store configuration
type MetadataServerConfig struct {
	Type    string               `mapstructure:"type"    yaml:"type"    validate:"required,oneof=sqlite badger memory"`
	Workers int                  `mapstructure:"workers" yaml:"workers" validate:"gte=1"`
	SQLite  MetadataSQLiteConfig `mapstructure:"sqlite"  yaml:"sqlite"`
	Badger  MetadataBadgerConfig `mapstructure:"badger"  yaml:"badger"`
}

// MetadataSQLiteConfig holds SQLite-specific configuration
type MetadataSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MetadataBadgerConfig holds BadgerDB-specific configuration.
// InMemory ignores Path and keeps every record in memory.
type MetadataBadgerConfig struct {
	Path     string `mapstructure:"path"      yaml:"path"`
	InMemory bool   `mapstructure:"in_memory" yaml:"in_memory"`
}
