package ocr

import "context"

// Engine is one recognition attempt's engine instance. Instances are not
// reused across attempts; Close releases all engine resources and must be
// called on every exit path.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}

// EngineFactory creates a fresh engine per extraction attempt, so no
// recognition state leaks between unrelated images.
type EngineFactory func() (Engine, error)
