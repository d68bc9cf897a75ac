package mqtt

import (
	"time"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/config"
)

// Config holds MQTT publisher configuration.
type Config struct {
	BrokerURL   string        `mapstructure:"broker_url"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"` //nolint:gosec // G101: config field name, not a credential
	ClientID    string        `mapstructure:"client_id"`
	TopicPrefix string        `mapstructure:"topic_prefix"`
	QoS         byte          `mapstructure:"qos"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the publisher defaults. An empty BrokerURL disables it.
func DefaultConfig() Config {
	return Config{
		ClientID:    "plunge",
		TopicPrefix: "plunge",
		QoS:         1,
		Timeout:     10 * time.Second,
	}
}

// ConfigFrom overlays the mqtt section onto DefaultConfig.
func ConfigFrom(cfg config.Config) Config {
	c := DefaultConfig()
	c.BrokerURL = cfg.GetString("mqtt.broker_url")
	c.Username = cfg.GetString("mqtt.username")
	c.Password = cfg.GetString("mqtt.password")
	if id := cfg.GetString("mqtt.client_id"); id != "" {
		c.ClientID = id
	}
	if p := cfg.GetString("mqtt.topic_prefix"); p != "" {
		c.TopicPrefix = p
	}
	if cfg.IsSet("mqtt.qos") {
		if q := cfg.GetInt("mqtt.qos"); q >= 0 && q <= 2 {
			c.QoS = byte(q)
		}
	}
	if d := cfg.GetDuration("mqtt.timeout"); d > 0 {
		c.Timeout = d
	}
	return c
}
