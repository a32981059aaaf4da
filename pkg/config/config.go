package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/fetchd-io/fetchd/pkg/fra"
)

// Config captures every configurable aspect of the retrieve daemon.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FETCHD_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// WorkDir is the daemon's working directory. The fifo directory
	// with the rename counter files and the retrieve-area file live
	// underneath it.
	WorkDir string `mapstructure:"work_dir" validate:"required"`

	// Retrieve carries the retrieve-area settings, including the
	// defaults that record migration fills into new fields.
	Retrieve RetrieveConfig `mapstructure:"retrieve"`

	// LsData selects and configures the listing-state store.
	LsData LsDataConfig `mapstructure:"lsdata"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output is where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// RetrieveConfig holds retrieve-area settings.
type RetrieveConfig struct {
	// AreaFile is the retrieve-area file path. Relative paths are
	// resolved against WorkDir.
	AreaFile string `mapstructure:"area_file" validate:"required"`

	// KeepConnectedTime is the default keep-connected duration in
	// seconds filled into records migrated from formats that predate
	// the field.
	KeepConnectedTime uint32 `mapstructure:"keep_connected_time"`

	// DirWarnTime is the default directory-warn threshold in seconds
	// for migrated records. 0 disables warning.
	DirWarnTime int64 `mapstructure:"dir_warn_time" validate:"gte=0"`

	// DirInfoTime is the default directory-info threshold in seconds
	// for migrated records. 0 disables the info message.
	DirInfoTime int64 `mapstructure:"dir_info_time" validate:"gte=0"`

	// MaxCopiedFiles is the process-wide per-scan file limit, also
	// the migration default for records that predate the field.
	MaxCopiedFiles uint32 `mapstructure:"max_copied_files" validate:"required,gt=0"`

	// MaxCopiedFileSize is the process-wide per-scan byte limit, in
	// bytes.
	MaxCopiedFileSize int64 `mapstructure:"max_copied_file_size" validate:"required,gt=0"`

	// MaxRenameLength bounds the names the rename rules may build.
	MaxRenameLength int `mapstructure:"max_rename_length" validate:"required,gt=1"`

	// MaxDispatchRate limits how many due directories the scheduler
	// dispatches per second. 0 means no limit.
	MaxDispatchRate uint `mapstructure:"max_dispatch_rate"`

	// DispatchBurst is the dispatch burst size when MaxDispatchRate
	// is set.
	DispatchBurst uint `mapstructure:"dispatch_burst"`
}

// LsDataConfig selects the listing-state store implementation.
//
// Type decides which store is used; only the matching type-specific
// section applies.
type LsDataConfig struct {
	// Type is the store implementation: badger or none.
	Type string `mapstructure:"type" validate:"required,oneof=badger none"`

	// Badger holds BadgerDB-specific options, used when Type=badger.
	Badger map[string]any `mapstructure:"badger"`
}

// FifoDir returns the directory holding the daemon's fifos and the
// per-rule rename counter files.
func (c *Config) FifoDir() string {
	return filepath.Join(c.WorkDir, "fifo_dir")
}

// AreaFilePath returns the absolute retrieve-area file path.
func (c *Config) AreaFilePath() string {
	if filepath.IsAbs(c.Retrieve.AreaFile) {
		return c.Retrieve.AreaFile
	}
	return filepath.Join(c.WorkDir, c.Retrieve.AreaFile)
}

// MigrateConfig bridges the daemon configuration into the record
// migrator's defaults.
func (c *Config) MigrateConfig() fra.MigrateConfig {
	return fra.MigrateConfig{
		DefaultKeepConnected: c.Retrieve.KeepConnectedTime,
		DefaultWarnTime:      c.Retrieve.DirWarnTime,
		DefaultInfoTime:      c.Retrieve.DirInfoTime,
		MaxCopiedFiles:       c.Retrieve.MaxCopiedFiles,
		MaxCopiedFileSize:    c.Retrieve.MaxCopiedFileSize,
	}
}

// Load reads the configuration from the given file (plus FETCHD_*
// environment overrides), applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable support and the config
// file search path. Variables use the FETCHD_ prefix with underscores,
// e.g. FETCHD_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("FETCHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "fetchd"))
	}
	v.AddConfigPath("/etc/fetchd")
}

// readConfigFile reads the config file when one exists. A missing file
// is only an error when it was named explicitly.
func readConfigFile(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && configPath == "" {
			return nil
		}
		if os.IsNotExist(err) && configPath == "" {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
