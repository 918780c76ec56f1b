// File: internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/berrythewa/motors/internal/daemon"
	"github.com/berrythewa/motors/internal/ipc"
)

const (
	// DefaultConfigDir is searched for client.yaml when no file is given.
	DefaultConfigDir = "/etc/motors"
	// DefaultMotorsConfig is the daemon's JSON configuration.
	DefaultMotorsConfig = "/etc/motors.json"

	envPrefix = "motors"
)

// Config holds the client's own settings. The motors JSON file belongs to
// the daemon and is read separately by LoadMotors.
type Config struct {
	SocketPath   string        `mapstructure:"socket_path" yaml:"socket_path" json:"socket_path"`
	PIDFile      string        `mapstructure:"pid_file" yaml:"pid_file" json:"pid_file"`
	MotorsConfig string        `mapstructure:"motors_config" yaml:"motors_config" json:"motors_config"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout" json:"dial_timeout"`
	ReplyTimeout time.Duration `mapstructure:"reply_timeout" yaml:"reply_timeout" json:"reply_timeout"`
	Log          LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level string        `mapstructure:"level" yaml:"level" json:"level"`
	File  FileLogConfig `mapstructure:"file" yaml:"file" json:"file"`
}

// FileLogConfig enables an optional rotating log file.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Path       string `mapstructure:"path" yaml:"path" json:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress" json:"compress"`
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		SocketPath:   ipc.DefaultSocketPath,
		PIDFile:      daemon.DefaultPIDFile,
		MotorsConfig: DefaultMotorsConfig,
		DialTimeout:  ipc.DefaultDialTimeout,
		ReplyTimeout: ipc.DefaultReplyTimeout,
		Log: LogConfig{
			Level: "warn",
			File: FileLogConfig{
				Path:       "/var/log/motors-client.log",
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("socket_path", d.SocketPath)
	v.SetDefault("pid_file", d.PIDFile)
	v.SetDefault("motors_config", d.MotorsConfig)
	v.SetDefault("dial_timeout", d.DialTimeout)
	v.SetDefault("reply_timeout", d.ReplyTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file.enabled", d.Log.File.Enabled)
	v.SetDefault("log.file.path", d.Log.File.Path)
	v.SetDefault("log.file.max_size_mb", d.Log.File.MaxSizeMB)
	v.SetDefault("log.file.max_backups", d.Log.File.MaxBackups)
	v.SetDefault("log.file.max_age_days", d.Log.File.MaxAgeDays)
	v.SetDefault("log.file.compress", d.Log.File.Compress)
}

// Load reads the client settings. An explicit configPath must exist; with
// an empty path client.yaml is looked up in DefaultConfigDir and its
// absence is not an error. MOTORS_* environment variables override both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := strings.TrimSpace(configPath); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("client")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SocketPath) == "" {
		return errors.New("socket_path must not be empty")
	}
	if strings.TrimSpace(c.PIDFile) == "" {
		return errors.New("pid_file must not be empty")
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("dial_timeout must not be negative: %s", c.DialTimeout)
	}
	if c.ReplyTimeout < 0 {
		return fmt.Errorf("reply_timeout must not be negative: %s", c.ReplyTimeout)
	}
	return nil
}
