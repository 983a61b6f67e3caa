package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseConfig struct {
	Log   LogConfig   `mapstructure:"log"   yaml:"log"`
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	Scan  ScanConfig  `mapstructure:"scan"  yaml:"scan"`
	Hash  HashConfig  `mapstructure:"hash"  yaml:"hash"`
}

func LoadConfig() (*BaseConfig, error) {
	cfg := &BaseConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
