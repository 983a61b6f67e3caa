package config

// CacheConfig holds fingerprint cache store configuration
type CacheConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}
