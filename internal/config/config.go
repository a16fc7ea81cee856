// SPDX-License-Identifier: Apache-2.0

// Package config loads docvars settings from defaults, an optional YAML file,
// a .env file and DOCVARS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DOCVARS_LOG_LEVEL.
const EnvPrefix = "DOCVARS"

// Config is the complete docvars configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log" json:"log"`
	Converter  ConverterConfig  `mapstructure:"converter" json:"converter"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary" json:"vocabulary"`
	HTTP       HTTPConfig       `mapstructure:"http" json:"http"`
}

// LogConfig selects the logger level and encoding. Trace enables per-item
// anchor and merge logging.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
	Trace  bool   `mapstructure:"trace" json:"trace"`
}

// ConverterConfig describes the PDF to DOCX conversion command.
type ConverterConfig struct {
	Command string        `mapstructure:"command" json:"command"`
	Args    []string      `mapstructure:"args" json:"args"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
	WorkDir string        `mapstructure:"work_dir" json:"work_dir"`
}

// VocabularyConfig points at an optional vocabulary file replacing the
// embedded one.
type VocabularyConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
}

// Load reads the configuration. path may be empty, in which case a
// docvars.yaml in the working directory is used when present.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docvars")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.trace", false)

	v.SetDefault("converter.command", "pdf2docx")
	v.SetDefault("converter.args", []string{})
	v.SetDefault("converter.timeout", 2*time.Minute)
	v.SetDefault("converter.work_dir", "")

	v.SetDefault("vocabulary.path", "")
	v.SetDefault("http.addr", ":8080")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Converter.Command) == "" {
		return errors.New("converter command cannot be empty")
	}
	if c.Converter.Timeout <= 0 {
		return fmt.Errorf("converter timeout must be positive, got %s", c.Converter.Timeout)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http address cannot be empty")
	}
	return nil
}
