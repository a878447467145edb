package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/uistream/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()
	v, err := config.InitViper(writeConfig(t, ""))
	require.NoError(t, err)

	c, err := config.Load(v)
	require.NoError(t, err)

	d := config.NewDefaultConfig()
	assert.Equal(t, d.API, c.API)
	assert.Equal(t, d.Redis.KeyPrefix, c.Redis.KeyPrefix)
	assert.Equal(t, d.Redis.Channel, c.Redis.Channel)
	assert.Equal(t, 24*time.Hour, c.Redis.TTL)
	assert.Equal(t, d.Kafka.Topic, c.Kafka.Topic)
	assert.Empty(t, c.Redis.Addr)
	assert.Empty(t, c.Kafka.Brokers)
	assert.False(t, c.Debug)
}

func TestLoad_TOMLFile(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
api = "https://example.com/chat"
debug = true
schemas = "schemas/**/*.json"
metadata_schema = "schemas/metadata.json"
log_file = "/tmp/uistream.jsonl"
session_path = "/tmp/session.json"

[headers]
authorization = "Bearer token"

[body]
model = "small"

[redis]
addr = "localhost:6379"
ttl = "1h"

[kafka]
brokers = ["k1:9092", "k2:9092"]
topic = "chat"
`)
	v, err := config.InitViper(path)
	require.NoError(t, err)

	c, err := config.Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/chat", c.API)
	assert.True(t, c.Debug)
	assert.Equal(t, "schemas/**/*.json", c.Schemas)
	assert.Equal(t, "schemas/metadata.json", c.MetadataSchema)
	assert.Equal(t, "/tmp/uistream.jsonl", c.LogFile)
	assert.Equal(t, "/tmp/session.json", c.SessionPath)
	assert.Equal(t, "Bearer token", c.Headers["authorization"])
	assert.Equal(t, "small", c.Body["model"])
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, time.Hour, c.Redis.TTL)
	assert.Equal(t, "uistream:messages", c.Redis.Channel)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "chat", c.Kafka.Topic)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `api = "https://file.example.com"`)
	t.Setenv("UISTREAM_API", "https://env.example.com")
	t.Setenv("UISTREAM_REDIS_ADDR", "redis:6379")

	v, err := config.InitViper(path)
	require.NoError(t, err)

	c, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", c.API)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
}

func TestInitViper_MissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := config.InitViper(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestInitViper_InvalidTOML(t *testing.T) {
	t.Parallel()
	_, err := config.InitViper(writeConfig(t, "api = "))
	require.Error(t, err)
}

func TestBindFlags_FlagWins(t *testing.T) {
	t.Parallel()
	v, err := config.InitViper(writeConfig(t, `api = "https://file.example.com"`))
	require.NoError(t, err)

	var api string
	var debug bool
	cmd := &cobra.Command{Use: "test"}
	config.AddStringFlag(cmd, config.FlagAPI, &api)
	config.AddBoolFlag(cmd, config.FlagDebug, &debug)
	require.NoError(t, cmd.ParseFlags([]string{"--api", "https://flag.example.com"}))
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--debug"}))

	config.BindFlags(v, cmd, []string{config.FlagAPI, config.FlagDebug, "unknown"})

	c, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", c.API)
	assert.True(t, c.Debug)
}

func TestAddStringFlag_DefaultFromConfig(t *testing.T) {
	t.Parallel()
	var api string
	cmd := &cobra.Command{Use: "test"}
	config.AddStringFlag(cmd, config.FlagAPI, &api)

	f := cmd.Flags().Lookup("api")
	require.NotNil(t, f)
	assert.Equal(t, config.NewDefaultConfig().API, f.DefValue)
}

func TestAddPersistentStringFlag_BindsFromSubcommand(t *testing.T) {
	t.Parallel()
	v, err := config.InitViper(writeConfig(t, ""))
	require.NoError(t, err)

	var logFile string
	root := &cobra.Command{Use: "root"}
	config.AddPersistentStringFlag(root, config.FlagLogFile, &logFile)
	sub := &cobra.Command{Use: "sub", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(sub)
	root.SetArgs([]string{"sub", "--log-file", "/tmp/x.log"})
	require.NoError(t, root.Execute())

	config.BindFlags(v, sub, []string{config.FlagLogFile})
	c, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.log", c.LogFile)
}
