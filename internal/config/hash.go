package config

// HashConfig holds fingerprinting configuration.
//
// Files at or above SampleThreshold are fingerprinted over three sampled
// windows of SampleSize bytes (head, middle, tail) instead of their full
// content. Workers <= 0 means one worker per CPU.
type HashConfig struct {
	Workers         int   `mapstructure:"workers"          yaml:"workers"`
	SampleThreshold int64 `mapstructure:"sample_threshold" yaml:"sample_threshold"`
	SampleSize      int64 `mapstructure:"sample_size"      yaml:"sample_size"`
	FlushThreshold  int   `mapstructure:"flush_threshold"  yaml:"flush_threshold"`
}
