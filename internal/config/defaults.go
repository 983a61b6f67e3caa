package config

import "github.com/spf13/viper"

func GetDefault() BaseConfig {
	return BaseConfig{
		Log: LogConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},
		Cache: CacheConfig{
			Path: "media_cache.db",
		},
		Scan: ScanConfig{
			Extensions: []string{
				".mkv", ".mp4", ".avi", ".mov",
				".wmv", ".flv", ".webm", ".m4v",
			},
			MinFileSize:  350 * 1024 * 1024,
			ExcludeNames: []string{"sample"},
		},
		Hash: HashConfig{
			Workers:         0,
			SampleThreshold: 64 * 1024 * 1024,
			SampleSize:      10 * 1024 * 1024,
			FlushThreshold:  100,
		},
	}
}

func setDefaults() {
	defaults := GetDefault()

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

	viper.SetDefault("cache.path", defaults.Cache.Path)

	viper.SetDefault("scan.extensions", defaults.Scan.Extensions)
	viper.SetDefault("scan.min_file_size", defaults.Scan.MinFileSize)
	viper.SetDefault("scan.exclude_names", defaults.Scan.ExcludeNames)

	viper.SetDefault("hash.workers", defaults.Hash.Workers)
	viper.SetDefault("hash.sample_threshold", defaults.Hash.SampleThreshold)
	viper.SetDefault("hash.sample_size", defaults.Hash.SampleSize)
	viper.SetDefault("hash.flush_threshold", defaults.Hash.FlushThreshold)
}
