package commands

import (
	"context"
	"os"
	"path/filepath"

	"github.com/checkam/scanverifier/internal/acquire"
)

// pathSelector is the CLI's file-selection surface: the "picker" is the
// path the user passed on the command line. An unset path behaves like a
// dismissed picker.
type pathSelector struct {
	path string
}

func (s *pathSelector) Select(ctx context.Context, capture bool) (*acquire.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return nil, context.Canceled
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return &acquire.Payload{Data: data, Name: filepath.Base(s.path)}, nil
}
