package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string   `mapstructure:"PORT"`
	Env               string   `mapstructure:"ENV"`
	BackendBaseURL    string   `mapstructure:"BACKEND_BASE_URL"`
	MLBaseURL         string   `mapstructure:"ML_BASE_URL"`
	AuthToken         string   `mapstructure:"AUTH_TOKEN"`
	UpstreamTimeout   int      `mapstructure:"UPSTREAM_TIMEOUT_SECONDS"`
	HbNormalMin       float64  `mapstructure:"HB_NORMAL_MIN"`
	HbNormalMax       float64  `mapstructure:"HB_NORMAL_MAX"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS      float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int      `mapstructure:"RATE_LIMIT_BURST"`
	SessionTTLMinutes int      `mapstructure:"SESSION_TTL_MINUTES"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 15)
	v.SetDefault("HB_NORMAL_MIN", 12)
	v.SetDefault("HB_NORMAL_MAX", 16)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("SESSION_TTL_MINUTES", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("BACKEND_BASE_URL")
	v.BindEnv("ML_BASE_URL")
	v.BindEnv("AUTH_TOKEN")
	v.BindEnv("UPSTREAM_TIMEOUT_SECONDS")
	v.BindEnv("HB_NORMAL_MIN")
	v.BindEnv("HB_NORMAL_MAX")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("SESSION_TTL_MINUTES")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.BackendBaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if cfg.MLBaseURL == "" {
		return nil, fmt.Errorf("ML_BASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_SECONDS must be positive, got %d", c.UpstreamTimeout)
	}
	if c.HbNormalMin >= c.HbNormalMax {
		return fmt.Errorf("HB_NORMAL_MIN (%.1f) must be below HB_NORMAL_MAX (%.1f)", c.HbNormalMin, c.HbNormalMax)
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.SessionTTLMinutes)
	}
	return nil
}
