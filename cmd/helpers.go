package cmd

import (
	"fmt"

	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/store"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openStore returns the Store rooted at the configured data directory.
func openStore(cfg *config.Config) *store.Store {
	return store.New(cfg.DataDir)
}
