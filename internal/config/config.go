package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	OracleProvider string   `mapstructure:"ORACLE_PROVIDER"`
	OracleModel    string   `mapstructure:"ORACLE_MODEL"`
	OracleTimeout  int      `mapstructure:"ORACLE_TIMEOUT_SECONDS"`
	GeminiAPIKey   string   `mapstructure:"GEMINI_API_KEY"`
	AnthropicKey   string   `mapstructure:"ANTHROPIC_API_KEY"`
	PolicyFile     string   `mapstructure:"POLICY_FILE"`
	RequestTimeout int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ORACLE_PROVIDER", "gemini")
	v.SetDefault("ORACLE_TIMEOUT_SECONDS", 30)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 60)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("ORACLE_PROVIDER")
	v.BindEnv("ORACLE_MODEL")
	v.BindEnv("ORACLE_TIMEOUT_SECONDS")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("ANTHROPIC_API_KEY")
	v.BindEnv("POLICY_FILE")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")

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

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. The oracle provider
// must be a supported backend, and whichever backend is selected must have
// its API key set outside of development. "none" disables the oracle
// entirely; the analysis endpoint then always answers in rule-based fallback
// mode, which is a legitimate degraded deployment.
func (c *Config) Validate() error {
	switch c.OracleProvider {
	case "gemini":
		if !c.IsDev() && c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when ORACLE_PROVIDER is \"gemini\" (current ENV=%q)", c.Env)
		}
	case "anthropic":
		if !c.IsDev() && c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when ORACLE_PROVIDER is \"anthropic\" (current ENV=%q)", c.Env)
		}
	case "none":
	default:
		return fmt.Errorf("ORACLE_PROVIDER must be \"gemini\", \"anthropic\", or \"none\", got %q", c.OracleProvider)
	}

	if c.OracleTimeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT_SECONDS must be positive, got %d", c.OracleTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeout)
	}

	return nil
}
