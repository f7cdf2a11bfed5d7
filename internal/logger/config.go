package logger

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration.
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"` // text (tint) or json
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

type fileConfig struct {
	Logging Config `yaml:"logging"`
}

// DefaultConfig logs INFO and above as colored text to stderr.
func DefaultConfig() Config {
	on := true
	return Config{
		Level:          "INFO",
		ConsoleEnabled: &on,
		ConsoleFormat:  "text",
		FilePath:       "logs/ladder.log",
		FileFormat:     "json",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// LoadConfig reads the `logging:` section of a YAML file over the defaults
// and applies LOG_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, err
		default:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
			cfg = merge(cfg, fc.Logging)
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_CONSOLE_FORMAT"); v != "" {
		cfg.ConsoleFormat = v
	}
	if v := os.Getenv("LOG_FILE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.FileEnabled = enabled
		}
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		cfg.FilePath = v
	}
	return cfg, nil
}

func merge(base, f Config) Config {
	if f.Level != "" {
		base.Level = f.Level
	}
	if f.ConsoleEnabled != nil {
		base.ConsoleEnabled = f.ConsoleEnabled
	}
	if f.ConsoleFormat != "" {
		base.ConsoleFormat = f.ConsoleFormat
	}
	base.FileEnabled = f.FileEnabled
	if f.FilePath != "" {
		base.FilePath = f.FilePath
	}
	if f.FileFormat != "" {
		base.FileFormat = f.FileFormat
	}
	if f.FileMaxSizeMB > 0 {
		base.FileMaxSizeMB = f.FileMaxSizeMB
	}
	if f.FileMaxBackups > 0 {
		base.FileMaxBackups = f.FileMaxBackups
	}
	if f.FileMaxAgeDays > 0 {
		base.FileMaxAgeDays = f.FileMaxAgeDays
	}
	return base
}
