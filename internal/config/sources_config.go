package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type SourcesConfig struct {
	RefreshInterval      time.Duration `mapstructure:"refresh_interval"`
	RefreshBudget        time.Duration `mapstructure:"refresh_budget"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	ChunkSize            int           `mapstructure:"chunk_size"`
	StaleCacheThreshold  time.Duration `mapstructure:"stale_cache_threshold"`
}

func (config SourcesConfig) validate() error {

	if config.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be greater than zero")
	}

	if config.RefreshBudget <= 0 || config.RefreshBudget >= config.RefreshInterval {
		return fmt.Errorf("refresh budget must be positive and below the refresh interval")
	}

	if config.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be greater than zero")
	}

	return nil
}

func (config SourcesConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("sources.refresh_interval", "REFRESH_INTERVAL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("sources.refresh_budget", "REFRESH_BUDGET"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("sources.max_requests_per_second", "MAX_REQUESTS_PER_SECOND"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("sources.chunk_size", "CHUNK_SIZE"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("sources.stale_cache_threshold", "STALE_CACHE_THRESHOLD"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
