package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/checkam/scanverifier/internal/acquire"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/device"
	"github.com/checkam/scanverifier/internal/ocr"
	"github.com/checkam/scanverifier/internal/scan"
	"github.com/checkam/scanverifier/internal/server"
	"github.com/checkam/scanverifier/internal/verify"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The daemon serves remote clients: images arrive as uploads, so the
	// acquirer runs without a local selection surface or tactile output.
	acq := acquire.NewAcquirer(nil, device.NopHaptics{}, logger)
	extractor := ocr.NewExtractor(ocr.NewGosseractFactory(cfg.OCR), logger)
	client := verify.NewClient(cfg.Verify, logger)
	pipeline := scan.NewPipeline(acq, extractor, client, device.NopHaptics{}, logger)

	srv := server.New(pipeline, cfg.Server, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
