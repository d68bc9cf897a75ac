package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/config"
)

// EnvPrefix prefixes every environment override: PLUNGE_SERVER_PORT=9090.
const EnvPrefix = "PLUNGE"

// Config holds the HTTP server configuration.
type Config struct {
	Host         string  `mapstructure:"host"`
	Port         int     `mapstructure:"port"`
	DevMode      bool    `mapstructure:"dev_mode"`
	RateLimitRPS float64 `mapstructure:"-"`
	RateBurst    int     `mapstructure:"-"`
	// AllowedOrigins are websocket origin patterns; empty means same-origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Addr returns the listen address as host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ConfigFrom reads the server and ratelimit sections.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Host:         cfg.GetString("server.host"),
		Port:         cfg.GetInt("server.port"),
		DevMode:      cfg.GetBool("server.dev_mode"),
		RateLimitRPS: cfg.GetFloat64("ratelimit.rps"),
		RateBurst:    cfg.GetInt("ratelimit.burst"),

		AllowedOrigins: cfg.GetStringSlice("server.allowed_origins"),
	}
}

// LoadConfig reads configuration from defaults, an optional YAML file, a
// .env file and PLUNGE_* environment variables, in increasing precedence.
func LoadConfig(configPath string) (*viper.Viper, error) {
	if err := loadDotEnv(configPath); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/plunge.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.issuer", "plunge")
	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)
	v.SetDefault("settings.history_limit", 50)
	v.SetDefault("webhook.enabled", true)
	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("mqtt.broker_url", "")
	v.SetDefault("mqtt.client_id", "plunge")
	v.SetDefault("mqtt.topic_prefix", "plunge")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.timeout", "10s")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("plunge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/plunge")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

// loadDotEnv loads .env from the config file's directory, or the working
// directory when no config file is given. Variables already set win.
func loadDotEnv(configPath string) error {
	dir := "."
	if configPath != "" {
		dir = filepath.Dir(configPath)
	}
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading .env: %w", err)
	}
	return nil
}
