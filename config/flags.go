package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag describes a CLI flag bound to a config key.
type Flag struct {
	// Name is the long flag name (e.g. "api").
	Name string

	// ViperKey is the dotted config key this flag maps to (e.g. "redis.addr").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// Flag registry keys.
const (
	FlagAPI            = "api"
	FlagDebug          = "debug"
	FlagJSONLogs       = "json-logs"
	FlagLogFile        = "log-file"
	FlagSchemas        = "schemas"
	FlagMetadataSchema = "metadata-schema"
	FlagSession        = "session"
	FlagMetricsListen  = "metrics-listen"
	FlagRedisAddr      = "redis-addr"
	FlagKafkaBrokers   = "kafka-brokers"
)

// Flags is the registry of every flag the CLI exposes.
var Flags = map[string]Flag{
	FlagAPI:            {Name: "api", ViperKey: "api", Description: "Chat endpoint that streams UI message chunks"},
	FlagDebug:          {Name: "debug", ViperKey: "debug", Description: "Enable debug logging"},
	FlagJSONLogs:       {Name: "json-logs", ViperKey: "json_logs", Description: "Log as JSON"},
	FlagLogFile:        {Name: "log-file", ViperKey: "log_file", Description: "Also write debug logs as JSON to this file"},
	FlagSchemas:        {Name: "schemas", ViperKey: "schemas", Description: "Glob of JSON Schema files for data parts"},
	FlagMetadataSchema: {Name: "metadata-schema", ViperKey: "metadata_schema", Description: "JSON Schema file for message metadata"},
	FlagSession:        {Name: "session", ViperKey: "session_path", Description: "Session file to load and save"},
	FlagMetricsListen:  {Name: "metrics-listen", ViperKey: "metrics_listen", Description: "Address to serve Prometheus metrics on"},
	FlagRedisAddr:      {Name: "redis-addr", ViperKey: "redis.addr", Description: "Redis address for the message sink"},
	FlagKafkaBrokers:   {Name: "kafka-brokers", ViperKey: "kafka.brokers", Description: "Kafka brokers for the message sink"},
}

// AddStringFlag registers a string flag on cmd from the registry, with the
// default taken from NewDefaultConfig.
func AddStringFlag(cmd *cobra.Command, key string, target *string) {
	def, ok := Flags[key]
	if !ok {
		return
	}
	cmd.Flags().StringVar(target, def.Name, defaults().GetString(def.ViperKey), def.Description)
}

// AddPersistentStringFlag registers a persistent string flag on cmd from the
// registry.
func AddPersistentStringFlag(cmd *cobra.Command, key string, target *string) {
	def, ok := Flags[key]
	if !ok {
		return
	}
	cmd.PersistentFlags().StringVar(target, def.Name, defaults().GetString(def.ViperKey), def.Description)
}

// AddBoolFlag registers a persistent bool flag on cmd from the registry.
func AddBoolFlag(cmd *cobra.Command, key string, target *bool) {
	def, ok := Flags[key]
	if !ok {
		return
	}
	cmd.PersistentFlags().BoolVar(target, def.Name, defaults().GetBool(def.ViperKey), def.Description)
}

// AddStringSliceFlag registers a string slice flag on cmd from the registry.
func AddStringSliceFlag(cmd *cobra.Command, key string, target *[]string) {
	def, ok := Flags[key]
	if !ok {
		return
	}
	cmd.Flags().StringSliceVar(target, def.Name, defaults().GetStringSlice(def.ViperKey), def.Description)
}

// BindFlags binds already-registered flags to viper. Call it after InitViper
// so flags take precedence over env, config file and defaults.
func BindFlags(v *viper.Viper, cmd *cobra.Command, keys []string) {
	for _, key := range keys {
		def, ok := Flags[key]
		if !ok {
			continue
		}
		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(def.Name)
		}
		if f == nil {
			continue
		}
		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
