// Package config loads uistream settings from defaults, an optional TOML
// file, UISTREAM_ environment variables and CLI flags.
package config

import "time"

// Config is the resolved CLI configuration.
type Config struct {
	API            string            `mapstructure:"api"`
	Headers        map[string]string `mapstructure:"headers"`
	Body           map[string]any    `mapstructure:"body"`
	Debug          bool              `mapstructure:"debug"`
	JSONLogs       bool              `mapstructure:"json_logs"`
	Schemas        string            `mapstructure:"schemas"`
	MetadataSchema string            `mapstructure:"metadata_schema"`
	LogFile        string            `mapstructure:"log_file"`
	SessionPath    string            `mapstructure:"session_path"`
	MetricsListen  string            `mapstructure:"metrics_listen"`
	Redis          RedisConfig       `mapstructure:"redis"`
	Kafka          KafkaConfig       `mapstructure:"kafka"`
}

// RedisConfig configures the Redis message sink. An empty Addr disables it.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Channel   string        `mapstructure:"channel"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// KafkaConfig configures the Kafka message sink. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// NewDefaultConfig returns the configuration used when nothing else is set.
func NewDefaultConfig() *Config {
	return &Config{
		API: "http://localhost:3000/api/chat",
		Redis: RedisConfig{
			KeyPrefix: "uistream:message:",
			Channel:   "uistream:messages",
			TTL:       24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Topic: "uistream.messages",
		},
	}
}
