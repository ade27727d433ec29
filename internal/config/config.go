// Package config loads server settings from an optional YAML file and
// MENTORS_* environment variables, environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sakif/mentor-directory/internal/validate"
)

// EnvPrefix prefixes every environment override, e.g. MENTORS_SERVER_PORT.
const EnvPrefix = "MENTORS"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Search   SearchConfig   `mapstructure:"search"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"oneof=text json"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL     time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	EmailDomain  string        `mapstructure:"email_domain"`
	BcryptCost   int           `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
	Google       GoogleConfig  `mapstructure:"google"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

// Enabled reports whether Google sign-in is fully configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.CallbackURL != ""
}

type SearchConfig struct {
	AliasesFile     string `mapstructure:"aliases_file"`
	DefaultPageSize int    `mapstructure:"default_page_size" validate:"min=1"`
	MaxPageSize     int    `mapstructure:"max_page_size" validate:"min=1,gtefield=DefaultPageSize"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "text")

	v.SetDefault("database.path", "data/mentors.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.email_domain", "")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.google.client_id", "")
	v.SetDefault("auth.google.client_secret", "")
	v.SetDefault("auth.google.callback_url", "")

	v.SetDefault("search.aliases_file", "")
	v.SetDefault("search.default_page_size", 20)
	v.SetDefault("search.max_page_size", 100)
}

// Load reads configFile, or config.yaml from the usual search paths when
// configFile is empty. A missing config.yaml is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/mentor-directory")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
