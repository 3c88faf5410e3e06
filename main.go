package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tickermap/config"
)

const usage = `usage: tickermap [-config path] <command>

commands:
  map     resolve the reference universe into destination tickers
  scrape  collect company profiles for every mapped reference
`

func main() {
	configPath := flag.String("config", "tickermap.yaml", "path to config file")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	if command != "map" && command != "scrape" {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	logger.Info("starting tickermap",
		"command", command,
		"config", *configPath,
		"mapping_store", cfg.Mapping.Store,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal, saving progress", "signal", sig)
		cancel()
	}()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	switch command {
	case "map":
		err = app.runMap(ctx)
	case "scrape":
		err = app.runScrape(ctx)
	}
	if err != nil {
		logger.Error("command failed", "command", command, "error", err)
		app.Close()
		os.Exit(1)
	}

	logger.Info("tickermap finished", "command", command)
}

// loadConfig reads path, falling back to defaults when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadAndValidate(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validate default config: %w", err)
		}
		return cfg, nil
	}
	return cfg, err
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts)), nil
}
