package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config for the whole library
type Config struct {
	App         AppConfig
	Solver      SolverConfig
	Calibration CalibrationConfig
	Sensitivity SensitivityConfig
	Metrics     MetricsConfig
}

// General application configuration
type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string `mapstructure:"log_level"`
}

// Configuration for the 1-D root finder used by the bootstrap
type SolverConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
	Tolerance     float64
}

// Configuration for the credit curve calibrator
type CalibrationConfig struct {
	// ArbitrageHandling is one of "ignore", "zero_hazard_rate", "fail"
	ArbitrageHandling string `mapstructure:"arbitrage_handling"`
	// AccrualOnDefaultFormula is one of "original_isda", "markit_fix"
	AccrualOnDefaultFormula string `mapstructure:"accrual_on_default_formula"`
	// Workers bounds concurrent curve calibrations in CalibrateAll
	Workers int
}

// Configuration for the sensitivity calculators
type SensitivityConfig struct {
	// BumpSize is the finite-difference spread bump in decimal (1e-4 = 1bp)
	BumpSize float64 `mapstructure:"bump_size"`
}

// Configuration for metrics
type MetricsConfig struct {
	Enabled bool
}

// Load reads the configuration from a file and environment variables
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		// A config file is optional for library consumers; defaults and
		// environment variables still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("CREDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "credit-analytics")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.log_level", "info")

	// Solver defaults
	viper.SetDefault("solver.max_iterations", 100)
	viper.SetDefault("solver.tolerance", 1e-12)

	// Calibration defaults
	viper.SetDefault("calibration.arbitrage_handling", "zero_hazard_rate")
	viper.SetDefault("calibration.accrual_on_default_formula", "original_isda")
	viper.SetDefault("calibration.workers", 4)

	// Sensitivity defaults
	viper.SetDefault("sensitivity.bump_size", 1e-4)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
}

// GetConfigPath returns the config file location override, if any
func GetConfigPath() string {
	configPath := os.Getenv("CREDIT_CONFIG_PATH")
	if configPath != "" {
		return configPath
	}
	return "./config/config.yaml"
}
