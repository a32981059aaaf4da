package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/fetchd-io/fetchd/pkg/lsdata"
)

// BadgerLsDataConfig holds the decoded badger section of the lsdata
// configuration.
type BadgerLsDataConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// CreateLsDataStore builds the directory-listing store described by the
// configuration. A nil store is returned when the type is "none".
//
// Parameters:
//   - cfg: the lsdata configuration section
//
// Returns:
//   - *lsdata.Store: the opened store, or nil for type "none"
//   - error: if the configuration is invalid or the store cannot be opened
func CreateLsDataStore(cfg *LsDataConfig) (*lsdata.Store, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "badger":
		var badgerCfg BadgerLsDataConfig
		if err := mapstructure.Decode(cfg.Badger, &badgerCfg); err != nil {
			return nil, fmt.Errorf("failed to decode badger lsdata config: %w", err)
		}
		if badgerCfg.Path == "" {
			return nil, fmt.Errorf("badger lsdata config requires a path")
		}
		store, err := lsdata.Open(badgerCfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger lsdata store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown lsdata store type: %s", cfg.Type)
	}
}
