package config

import "strings"

// Migration and scan defaults handed to records whose source format
// predates the corresponding field.
const (
	// DefaultKeepConnectedTime keeps connections open after a
	// retrieval for this many seconds. 0 closes immediately.
	DefaultKeepConnectedTime uint32 = 0

	// DefaultDirWarnTime warns when a source directory stays silent
	// for this many seconds. 0 disables warning.
	DefaultDirWarnTime int64 = 0

	// DefaultDirInfoTime logs an informational note after this much
	// source silence. 0 disables it.
	DefaultDirInfoTime int64 = 0

	// DefaultMaxCopiedFiles is the per-scan file limit.
	DefaultMaxCopiedFiles uint32 = 100

	// DefaultMaxCopiedFileSize is the per-scan byte limit (100 MiB).
	DefaultMaxCopiedFileSize int64 = 100 * 1024 * 1024

	// DefaultMaxRenameLength bounds generated file names.
	DefaultMaxRenameLength = 256
)

// ApplyDefaults fills unspecified configuration fields. Zero values
// are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyRetrieveDefaults(&cfg.Retrieve)
	applyLsDataDefaults(&cfg.LsData)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyRetrieveDefaults(cfg *RetrieveConfig) {
	if cfg.AreaFile == "" {
		cfg.AreaFile = "fra"
	}
	if cfg.MaxCopiedFiles == 0 {
		cfg.MaxCopiedFiles = DefaultMaxCopiedFiles
	}
	if cfg.MaxCopiedFileSize == 0 {
		cfg.MaxCopiedFileSize = DefaultMaxCopiedFileSize
	}
	if cfg.MaxRenameLength == 0 {
		cfg.MaxRenameLength = DefaultMaxRenameLength
	}
	if cfg.MaxDispatchRate > 0 && cfg.DispatchBurst == 0 {
		cfg.DispatchBurst = cfg.MaxDispatchRate
	}
}

func applyLsDataDefaults(cfg *LsDataConfig) {
	if cfg.Type == "" {
		cfg.Type = "none"
	}
}
