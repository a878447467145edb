package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by InitViper.
const EnvPrefix = "UISTREAM"

// InitViper creates a configured *viper.Viper.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindFlags)
//  2. Environment variables (UISTREAM_API, UISTREAM_REDIS_ADDR, etc.)
//  3. config.toml values
//  4. Defaults from NewDefaultConfig()
//
// An explicit path must exist. Without one, config.toml is looked up in the
// user config directory and the working directory, and its absence is fine.
func InitViper(path string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "uistream"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if path != "" || !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Load unmarshals the resolved settings into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &c, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() using dotted
// keys so AutomaticEnv can resolve every key.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("api", d.API)
	v.SetDefault("headers", map[string]string{})
	v.SetDefault("body", map[string]any{})
	v.SetDefault("debug", d.Debug)
	v.SetDefault("json_logs", d.JSONLogs)
	v.SetDefault("schemas", d.Schemas)
	v.SetDefault("metadata_schema", d.MetadataSchema)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("session_path", d.SessionPath)
	v.SetDefault("metrics_listen", d.MetricsListen)

	// Redis
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)
	v.SetDefault("redis.channel", d.Redis.Channel)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	// Kafka
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
}
