// Package config loads settings from defaults, an optional YAML file and
// ORGS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables read by Load.
	EnvPrefix = "ORGS"

	appName    = "orgs"
	dbFileName = "servers.db"
	logName    = "orgs.log"

	ResolverSystem = "system"
	ResolverOff    = "off"
)

type Config struct {
	DataDir         string        `mapstructure:"data_dir"`
	DBPath          string        `mapstructure:"db_path"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
	ValidateTimeout time.Duration `mapstructure:"validate_timeout"`
	Resolver        string        `mapstructure:"resolver"`
	Lang            string        `mapstructure:"lang"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// Load reads the configuration into v. file may be empty.
func Load(v *viper.Viper, file string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "")
	v.SetDefault("db_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("validate_timeout", 30*time.Second)
	v.SetDefault("resolver", ResolverSystem)
	v.SetDefault("user_agent", "orgs/1.0")
	if err := v.BindEnv("lang", EnvPrefix+"_LANG", "LC_ALL", "LANG"); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.complete(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) complete() error {
	if c.DataDir == "" {
		d, err := dataDir()
		if err != nil {
			return fmt.Errorf("data dir: %w", err)
		}
		c.DataDir = d
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, dbFileName)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, logName)
	}
	if c.ValidateTimeout < 0 {
		return errors.New("validate_timeout must not be negative")
	}
	if c.Resolver == "" {
		c.Resolver = ResolverOff
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. ok is false for unknown values,
// which map to info.
func (c *Config) SlogLevel() (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func dataDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		h, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(h, ".local", "share", appName), nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, "."+appName), nil
}
