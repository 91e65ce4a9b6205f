package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/common"
)

// GosseractEngine wraps a tesseract client constrained to English
// alphanumeric text plus hyphen, to suppress recognition noise.
type GosseractEngine struct {
	client *gosseract.Client
}

// NewGosseractFactory returns an EngineFactory producing configured
// gosseract clients.
func NewGosseractFactory(cfg common.OCRConfig) EngineFactory {
	return func() (Engine, error) {
		return newGosseractEngine(cfg)
	}
}

func newGosseractEngine(cfg common.OCRConfig) (*GosseractEngine, error) {
	client := gosseract.NewClient()

	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetVariable("tessedit_char_whitelist", constants.CodeAllowlist); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	client.SetPageSegMode(gosseract.PSM_AUTO)

	return &GosseractEngine{client: client}, nil
}

func (g *GosseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := g.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := g.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

func (g *GosseractEngine) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
