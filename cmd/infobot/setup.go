package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/infobot/config"
	"github.com/urfave/cli/v2"
)

// setup loads the configuration and installs the default logger.
// Precedence is defaults, then the config file, then INFOBOT_* variables,
// then global flags.
func (r *runner) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if c.IsSet("log-level") {
		cfg.Log.Level = strings.ToLower(c.String("log-level"))
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = strings.ToLower(c.String("log-format"))
	}
	if c.IsSet("working-dir") {
		cfg.Storage.WorkingDir = c.String("working-dir")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg = cfg

	return r.setupLogger(cfg.Log)
}

func (r *runner) setupLogger(logCfg config.LogConfig) error {
	level, err := logCfg.SlogLevel()
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", logCfg.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch logCfg.Format {
	case "json":
		handler = slog.NewJSONHandler(r.stderr, opts)
	default:
		handler = slog.NewTextHandler(r.stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	return nil
}
