// Package config loads the runtime configuration from environment variables,
// with a .env file honored for local development.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the service.
type Config struct {
	Port        string   `mapstructure:"port"`
	DBPath      string   `mapstructure:"db_path"`
	LogLevel    string   `mapstructure:"log_level"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	JWTSecret   string   `mapstructure:"jwt_secret"`

	GitHub GitHubConfig `mapstructure:",squash"`
	Notion NotionConfig `mapstructure:",squash"`
	Auth   AuthConfig   `mapstructure:",squash"`
}

// GitHubConfig holds the OAuth application credentials.
type GitHubConfig struct {
	ClientID     string `mapstructure:"github_client_id"`
	ClientSecret string `mapstructure:"github_client_secret"`
	CallbackURL  string `mapstructure:"github_callback_url"`
}

// NotionConfig holds the internal integration credential.
type NotionConfig struct {
	APIKey string `mapstructure:"notion_api_key"`
}

// AuthConfig holds the credential of the application's own login.
type AuthConfig struct {
	Username string `mapstructure:"auth_username"`
	Password string `mapstructure:"auth_password"`
}

// Load reads the configuration from the environment and validates the
// required secrets. Defaults cover everything that has a sane local value.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "data/app.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("github_callback_url", "http://localhost:8080/api/github/callback")

	v.AutomaticEnv()
	for _, key := range []string{
		"port",
		"db_path",
		"log_level",
		"cors_origins",
		"jwt_secret",
		"github_client_id",
		"github_client_secret",
		"github_callback_url",
		"notion_api_key",
		"auth_username",
		"auth_password",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	for key, value := range map[string]string{
		"JWT_SECRET":           c.JWTSecret,
		"GITHUB_CLIENT_ID":     c.GitHub.ClientID,
		"GITHUB_CLIENT_SECRET": c.GitHub.ClientSecret,
		"AUTH_USERNAME":        c.Auth.Username,
		"AUTH_PASSWORD":        c.Auth.Password,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %v", missing)
	}
	return nil
}
