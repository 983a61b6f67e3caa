package config

// ScanConfig holds the policy filters applied while walking directories.
// Files failing any filter never reach the detection engine.
type ScanConfig struct {
	Extensions   []string `mapstructure:"extensions"    yaml:"extensions"`
	MinFileSize  int64    `mapstructure:"min_file_size" yaml:"min_file_size"`
	ExcludeNames []string `mapstructure:"exclude_names" yaml:"exclude_names"`
}
