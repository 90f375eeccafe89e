package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// Server
	ListenAddr string `mapstructure:"listen_addr"`

	// AWS
	Region string `mapstructure:"region"`

	// Pipeline
	Project          string `mapstructure:"project"`
	JobPrefix        string `mapstructure:"job_prefix"`
	ClockOffsetHours int    `mapstructure:"clock_offset_hours"`

	// Audit database; empty disables invocation auditing
	AuditDSN string `mapstructure:"audit_dsn"`
}

// Load loads configuration from defaults, an optional config file, and
// PIPELINE_* environment variables
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.SetEnvPrefix("PIPELINE")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("region", "eu-west-3")
	v.SetDefault("project", "wine-quality-project")
	v.SetDefault("job_prefix", "wine-quality")
	v.SetDefault("clock_offset_hours", 2)
	v.SetDefault("audit_dsn", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}
