package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/checkam/scanverifier/internal/acquire"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/device"
	"github.com/checkam/scanverifier/internal/ocr"
	"github.com/checkam/scanverifier/internal/scan"
	"github.com/checkam/scanverifier/internal/verify"
)

var (
	apiURL  string
	verbose bool

	cfg      *common.Config
	logger   *slog.Logger
	probe    *device.Probe
	pipeline *scan.Pipeline
	selector *pathSelector
)

func Execute() error {
	root := &cobra.Command{
		Use:   "scanverify",
		Short: "Scan product authentication codes and verify them",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			cfg = common.LoadConfig()
			if apiURL != "" {
				cfg.Verify.APIURL = apiURL
			}
			if cfg.Verify.APIURL == "" {
				return common.NewAppError("CONFIG_ERROR", "verification endpoint required (--api or VERIFY_API_URL)", nil)
			}

			probe = device.NewProbe()
			haptics := device.BellHaptics{W: os.Stderr}
			selector = &pathSelector{}
			acq := acquire.NewAcquirer(selector, haptics, logger)
			extractor := ocr.NewExtractor(ocr.NewGosseractFactory(cfg.OCR), logger)
			client := verify.NewClient(cfg.Verify, logger)
			pipeline = scan.NewPipeline(acq, extractor, client, haptics, logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api", "", "verification service URL (default $VERIFY_API_URL)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(scanCmd(), verifyCmd(), watchCmd())

	if err := root.Execute(); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("command failed", "error", err)
		return err
	}
	return nil
}
