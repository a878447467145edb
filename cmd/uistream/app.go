package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/uistream"
	"github.com/fwojciec/uistream/chat"
	"github.com/fwojciec/uistream/config"
	"github.com/fwojciec/uistream/httpstream"
	"github.com/fwojciec/uistream/interpreter"
	"github.com/fwojciec/uistream/kafka"
	"github.com/fwojciec/uistream/logger"
	"github.com/fwojciec/uistream/metrics"
	"github.com/fwojciec/uistream/redis"
	"github.com/fwojciec/uistream/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// app holds the dependencies shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder
	schemas  map[string]uistream.Schema
	metadata uistream.Schema
	sinks    []uistream.Sink
	closers  []func() error
}

// newApp resolves configuration for cmd and builds the logger, metrics,
// schemas and sinks it asks for. keys names the registry flags cmd defines.
// logs receives log output.
func newApp(cmd *cobra.Command, rf *rootFlags, logs io.Writer, keys ...string) (*app, error) {
	v, err := config.InitViper(rf.configPath)
	if err != nil {
		return nil, err
	}
	config.BindFlags(v, cmd, append(keys, config.FlagDebug, config.FlagJSONLogs, config.FlagLogFile))
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if err := a.setupLogger(logs); err != nil {
		return nil, err
	}
	if err := a.setupSchemas(); err != nil {
		a.Close()
		return nil, err
	}
	a.setupMetrics()
	a.setupSinks()
	return a, nil
}

// setupLogger logs to logs and, with a log file configured, also writes
// every record at debug level as JSON to that file.
func (a *app) setupLogger(logs io.Writer) error {
	a.logger = logger.New(
		logger.WithWriter(logs),
		logger.WithDebug(a.cfg.Debug),
		logger.WithPretty(!a.cfg.JSONLogs),
		logger.WithJSON(a.cfg.JSONLogs),
	)
	if a.cfg.LogFile == "" {
		return nil
	}
	f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	a.closers = append(a.closers, f.Close)
	a.logger = logger.Multi(a.logger, logger.New(
		logger.WithWriter(f),
		logger.WithDebug(true),
		logger.WithJSON(true),
	))
	return nil
}

func (a *app) setupSchemas() error {
	if a.cfg.Schemas != "" {
		base, pattern := doublestar.SplitPattern(a.cfg.Schemas)
		schemas, err := schema.Load(os.DirFS(base), pattern)
		if err != nil {
			return fmt.Errorf("loading schemas: %w", err)
		}
		a.logger.Debug("schemas loaded", "pattern", a.cfg.Schemas, "count", len(schemas))
		a.schemas = schemas
	}
	if path := a.cfg.MetadataSchema; path != "" {
		doc, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("loading metadata schema: %w", err)
		}
		s, err := schema.Compile(schema.Name(path), doc)
		if err != nil {
			return fmt.Errorf("loading metadata schema: %w", err)
		}
		a.logger.Debug("metadata schema loaded", "file", path)
		a.metadata = s
	}
	return nil
}

func (a *app) setupMetrics() {
	if a.cfg.MetricsListen == "" {
		return
	}
	reg := prometheus.NewRegistry()
	a.recorder = metrics.New(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              a.cfg.MetricsListen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", a.cfg.MetricsListen, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", a.cfg.MetricsListen)
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

func (a *app) setupSinks() {
	if rc := a.cfg.Redis; rc.Addr != "" {
		client := redis.NewClient(rc.Addr)
		a.sinks = append(a.sinks, redis.NewSink(client,
			redis.WithKeyPrefix(rc.KeyPrefix),
			redis.WithChannel(rc.Channel),
			redis.WithTTL(rc.TTL),
		))
		a.closers = append(a.closers, client.Close)
		a.logger.Debug("redis sink enabled", "addr", rc.Addr)
	}
	if kc := a.cfg.Kafka; len(kc.Brokers) > 0 {
		sink := kafka.NewSink(kafka.NewWriter(kc.Brokers, kc.Topic))
		a.sinks = append(a.sinks, sink)
		a.closers = append(a.closers, sink.Close)
		a.logger.Debug("kafka sink enabled", "brokers", kc.Brokers, "topic", kc.Topic)
	}
}

// schemaOptions returns the interpreter options for the loaded schemas.
func (a *app) schemaOptions() []interpreter.Option {
	var opts []interpreter.Option
	if len(a.schemas) > 0 {
		opts = append(opts, interpreter.WithSchemas(a.schemas))
	}
	if a.metadata != nil {
		opts = append(opts, interpreter.WithMessageMetadataSchema(a.metadata))
	}
	return opts
}

// interpreterOptions returns the options every interpreter run shares.
func (a *app) interpreterOptions() []interpreter.Option {
	opts := append([]interpreter.Option{interpreter.WithLogger(a.logger)}, a.schemaOptions()...)
	if a.recorder != nil {
		opts = append(opts, interpreter.WithObserver(a.recorder))
	}
	return opts
}

// chatOptions configures a chat that starts from messages.
func (a *app) chatOptions(messages []uistream.Message) []chat.Option {
	header := http.Header{}
	for k, v := range a.cfg.Headers {
		header.Set(k, v)
	}
	opts := []chat.Option{
		chat.WithAPI(a.cfg.API),
		chat.WithHeader(header),
		chat.WithBody(a.cfg.Body),
		chat.WithClient(httpstream.New(httpstream.WithLogger(a.logger))),
		chat.WithLogger(a.logger),
		chat.WithMessages(messages),
		chat.WithSinks(a.sinks...),
	}
	if so := a.schemaOptions(); len(so) > 0 {
		opts = append(opts, chat.WithInterpreterOptions(so...))
	}
	if a.recorder != nil {
		opts = append(opts, chat.WithMetrics(a.recorder))
	}
	return opts
}

// writeSinks hands msg to every configured sink, logging failures.
func (a *app) writeSinks(ctx context.Context, msg uistream.Message) {
	for _, s := range a.sinks {
		if err := s.Write(ctx, msg); err != nil {
			a.logger.Error("sink write failed", "message", msg.ID, "error", err)
		}
	}
}

// Close releases sinks and stops the metrics server.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
