package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/acquire"
	"github.com/checkam/scanverifier/internal/common"
)

// ProgressFunc receives the extraction progress phases, in order. Status
// signals only, not retry points.
type ProgressFunc func(phase string)

// RawResult holds one extraction attempt's output. Never mutated.
type RawResult struct {
	Text     string
	Duration time.Duration
}

// Extractor runs a fresh recognition engine over one image payload. Engine
// resources are released after every attempt regardless of outcome.
type Extractor struct {
	newEngine EngineFactory
	logger    *slog.Logger
}

func NewExtractor(factory EngineFactory, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{newEngine: factory, logger: logger}
}

// Extract recognizes the code text in img. It returns ErrLowConfidence when
// the engine yields no usable text and ErrEngineFailure on any internal
// engine fault; both map to the same user-facing remediation message.
func (e *Extractor) Extract(ctx context.Context, img *acquire.Payload, progress ProgressFunc) (RawResult, error) {
	start := time.Now()
	if progress != nil {
		progress(constants.PhaseScannerActivated)
	}

	engine, err := e.newEngine()
	if err != nil {
		e.logger.Error("ocr.engine.init_failed", "error", err)
		return RawResult{}, common.WrapError(common.ErrEngineFailure, err.Error())
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			e.logger.Warn("ocr.engine.close_failed", "error", cerr)
		}
	}()

	if progress != nil {
		progress(constants.PhaseReadingCode)
	}

	text, err := engine.Recognize(ctx, img.Data)
	dur := time.Since(start)
	if err != nil {
		e.logger.Error("ocr.recognize.failed", "name", img.Name, "duration_ms", dur.Milliseconds(), "error", err)
		return RawResult{}, common.WrapError(common.ErrEngineFailure, err.Error())
	}
	if strings.TrimSpace(text) == "" {
		e.logger.Info("ocr.recognize.empty", "name", img.Name, "duration_ms", dur.Milliseconds())
		return RawResult{}, common.ErrLowConfidence
	}

	e.logger.Debug("ocr.recognize.ok", "name", img.Name, "chars", len(text), "duration_ms", dur.Milliseconds())
	return RawResult{Text: text, Duration: dur}, nil
}
