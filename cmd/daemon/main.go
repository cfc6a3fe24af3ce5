// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ManuGH/seacam/internal/config"
	"github.com/ManuGH/seacam/internal/daemon"
	"github.com/ManuGH/seacam/internal/health"
	xglog "github.com/ManuGH/seacam/internal/log"
	"github.com/ManuGH/seacam/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:], os.Stdout, os.Stderr))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "seacam",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		effectiveConfigPath = resolveDefaultConfigPath()
	}

	// ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: "seacam",
		Version: cfg.Version,
	})

	switch {
	case explicitConfigPath != "":
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "file").
			Str(xglog.FieldPath, explicitConfigPath).
			Msg("loaded configuration from file")
	case effectiveConfigPath != "":
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "file(auto)").
			Str(xglog.FieldPath, effectiveConfigPath).
			Msg("loaded configuration from file")
	default:
		logger.Info().
			Str(xglog.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed, verify configuration and permissions")
	}

	logger.Info().
		Str(xglog.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.API.ListenAddr).
		Str("store", cfg.Store.Backend).
		Str("device", cfg.Capture.Device).
		Str("image_format", cfg.Capture.ImageFormat).
		Msg("starting seacam")
	logger.Info().Msgf("→ Data dir: %s", cfg.DataDir)
	logger.Info().Msgf("→ Media dir: %s (min free %d MB)", cfg.Capture.MediaDir, cfg.Capture.MinFreeMB)

	rt, err := daemon.Bootstrap(ctx, cfg, daemon.Options{})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "bootstrap.failed").
			Msg("failed to initialise runtime")
	}

	// Watch the file the daemon was started from, or where a saved one would land.
	watchPath := effectiveConfigPath
	if watchPath == "" {
		watchPath = filepath.Join(cfg.DataDir, "config.yaml")
	}
	cfgHolder := config.NewConfigHolder(cfg, config.NewLoader(watchPath, version.Version))

	mgr, err := daemon.NewManager(
		daemon.ServerConfig{ListenAddr: cfg.API.ListenAddr},
		daemon.Deps{Logger: logger, APIHandler: rt.API.Handler()},
	)
	if err != nil {
		_ = rt.Close()
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "manager.creation.failed").
			Msg("failed to create daemon manager")
	}
	// Registered first so it runs last, after the scheduler is suspended.
	mgr.RegisterShutdownHook("store", func(context.Context) error {
		return rt.Close()
	})

	app := daemon.NewApp(logger, mgr, cfgHolder, rt.Scheduler)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "manager.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}

// resolveDefaultConfigPath returns ${SEACAM_DATA}/config.yaml when it exists.
func resolveDefaultConfigPath() string {
	dataDir := strings.TrimSpace(config.ParseString(config.EnvDataDir, config.Defaults().DataDir))
	if dataDir == "" {
		return ""
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}
