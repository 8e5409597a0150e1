package main

import (
	"context"
	"imagefilter/internal/adapters/converter"
	"imagefilter/internal/adapters/file"
	"imagefilter/internal/adapters/handler"
	"imagefilter/internal/adapters/metrics"
	"imagefilter/internal/adapters/server"
	"imagefilter/internal/config"
	"imagefilter/internal/core/port"
	"imagefilter/internal/core/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("starting imagefilter...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	logLevel, _ := cfg.LogLevel()
	zerolog.SetGlobalLevel(logLevel)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector()

	remover := file.NewRemover(collector.RecordCleanup)
	tracker := service.NewArtifactTracker(remover, collector, cfg.Cleanup.Interval, cfg.Cleanup.MaxAge)

	downloader := file.NewDownloader(&http.Client{Timeout: cfg.Fetch.Timeout}, cfg.Fetch.MaxBytes)
	opts := converter.Options{
		Width:   cfg.Filter.Width,
		Height:  cfg.Filter.Height,
		Quality: cfg.Filter.Quality,
		Dir:     cfg.File.Dir,
	}

	var filter port.ImageFilter
	switch cfg.Filter.Backend {
	case config.BackendMagick:
		filter, err = converter.NewMagickFilter(downloader, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed initializing magick filter")
		}
	default:
		filter = converter.NewImagingFilter(downloader, opts)
	}

	log.Info().Str("backend", cfg.Filter.Backend).Str("dir", file.TempDir(cfg.File.Dir)).Msg("filter ready")

	image := handler.NewImage(service.NewMeasuredFilter(filter, cfg.Filter.Backend, collector), tracker, collector,
		cfg.Handler.Timeout)

	serverCfg := server.Config{
		Addr:         cfg.Addr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if cfg.Metrics.Enabled {
		serverCfg.Metrics = collector.Handler()
	}

	srv := server.New(serverCfg, image)

	go tracker.RunJanitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Info().Msgf("server running at http://localhost:%d", cfg.Server.Port)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	tracker.Sweep()

	log.Info().Msg("server exited")
}
