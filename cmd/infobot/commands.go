package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/poiesic/infobot"
	"github.com/poiesic/infobot/engine"
	"github.com/poiesic/infobot/gateway"
	"github.com/poiesic/infobot/httpapi"
	"github.com/poiesic/infobot/ingest"
	"github.com/poiesic/infobot/reembed"
	"github.com/urfave/cli/v2"
)

// openService opens the index and model stack described by the loaded config.
func (r *runner) openService() (*infobot.Service, error) {
	cfg := r.cfg
	opts := []infobot.Option{
		infobot.WithAIConfig(cfg.AIConfig()),
		infobot.WithLogger(slog.Default()),
		infobot.WithEngineOptions(
			engine.WithMaxAsync(cfg.Engine.MaxAsync),
			engine.WithTopK(cfg.Engine.TopK),
			engine.WithMinSimilarity(cfg.Engine.MinSimilarity),
			engine.WithMaxContextRunes(cfg.Engine.MaxContextRunes),
			engine.WithChunkSize(cfg.Ingest.ChunkSize),
		),
	}
	svc, err := infobot.Open(cfg.Storage.WorkingDir, append(opts, r.options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}
	return svc, nil
}

func (r *runner) serveCommand(c *cli.Context) error {
	if c.IsSet("addr") {
		r.cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("max-async") {
		r.cfg.Engine.MaxAsync = c.Int("max-async")
	}

	svc, err := r.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if path := c.String("ingest-file"); path != "" {
		driver, err := svc.NewIngestDriver(
			ingest.WithChunkSize(r.cfg.Ingest.ChunkSize),
			ingest.WithDelay(r.cfg.Ingest.Delay),
		)
		if err != nil {
			return err
		}
		// A failed startup ingestion is logged by the driver; serving continues
		// over whatever is already indexed.
		if ok, err := driver.IngestFile(ctx, path); !ok {
			slog.Warn("startup ingestion failed", "path", path, "err", err)
		}
	}

	server, err := svc.NewServer(
		httpapi.WithAddr(r.cfg.Server.Addr),
		httpapi.WithTimeouts(r.cfg.Server.ReadTimeout, r.cfg.Server.WriteTimeout, r.cfg.Server.IdleTimeout),
		httpapi.WithShutdownTimeout(r.cfg.Server.ShutdownTimeout),
		httpapi.WithCORSOrigins(r.cfg.Server.CORSOrigins...),
	)
	if err != nil {
		return err
	}
	return server.Run(ctx)
}

func (r *runner) ingestCommand(c *cli.Context) error {
	if c.IsSet("chunk-size") {
		r.cfg.Ingest.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("delay") {
		r.cfg.Ingest.Delay = c.Duration("delay")
	}
	if c.IsSet("max-async") {
		r.cfg.Engine.MaxAsync = c.Int("max-async")
	}
	path := r.cfg.Ingest.InputFile
	if c.IsSet("file") {
		path = c.String("file")
	}

	svc, err := r.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bar := newChunkProgress(r.stderr)
	driver, err := svc.NewIngestDriver(
		ingest.WithChunkSize(r.cfg.Ingest.ChunkSize),
		ingest.WithDelay(r.cfg.Ingest.Delay),
		ingest.WithProgress(bar.update),
	)
	if err != nil {
		return err
	}

	var ok bool
	if pattern := c.String("glob"); pattern != "" {
		ok, err = driver.IngestGlob(ctx, c.String("root"), pattern)
	} else {
		ok, err = driver.IngestFile(ctx, path)
	}
	if !ok {
		if err == nil {
			err = errors.New("one or more files were not ingested")
		}
		return fmt.Errorf("ingestion failed: %w", err)
	}

	report := driver.LastReport()
	stats, err := svc.Engine().Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.stderr, "Inserted %d/%d chunks from %s (%d failed). Index: %d documents, %d chunks, %d concepts\n",
		report.Inserted, report.Total, report.Source, report.Failed, stats.Documents, stats.Chunks, stats.Concepts)
	return nil
}

func (r *runner) queryCommand(c *cli.Context) error {
	svc, err := r.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	question, mode := c.String("question"), c.String("mode")
	var env gateway.Envelope
	if c.Bool("sources") {
		env = svc.Gateway().QueryWithSources(c.Context, question, mode)
	} else {
		env = svc.Gateway().Query(c.Context, question, mode)
	}
	return r.printJSON(env)
}

func (r *runner) modesCommand(c *cli.Context) error {
	return r.printJSON(gateway.ModeCatalog())
}

func (r *runner) reembedCommand(c *cli.Context) error {
	target, err := reembed.ParseTarget(c.String("target"))
	if err != nil {
		return err
	}
	if c.IsSet("embedding-host") {
		r.cfg.AI.EmbeddingHost = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		r.cfg.AI.EmbeddingModel = c.String("embedding-model")
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	svc, err := r.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	reembedder, err := svc.NewReembedder(reembedConfig, r.stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.stderr, "Index: %s\n", r.cfg.Storage.WorkingDir)
	fmt.Fprintf(r.stderr, "Embedding host: %s\n", r.cfg.AI.EmbeddingHost)
	fmt.Fprintf(r.stderr, "Embedding model: %s\n", r.cfg.AI.EmbeddingModel)
	fmt.Fprintln(r.stderr)

	if err := reembedder.Run(c.Context, target); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func (r *runner) printJSON(v any) error {
	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
