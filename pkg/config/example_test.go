package config_test

import (
	"fmt"

	"github.com/wonny/fundranker/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	// Access configuration values
	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Cache dir: %s\n", cfg.Cache.Dir)
	fmt.Printf("Freshness window: %d days\n", cfg.Cache.FreshnessDays)
}
