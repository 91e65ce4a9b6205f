package acquire

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/device"
)

// Source identifies where an image came from.
type Source string

const (
	SourceCamera  Source = "camera"
	SourceGallery Source = "gallery"
	SourceDropped Source = "dropped"
)

// Payload is one acquired image: opaque bytes plus a MIME tag. It is owned
// transiently by a single pipeline invocation and discarded after the
// extraction attempt.
type Payload struct {
	Data []byte
	MIME string
	Name string
}

// FileSelector is the platform file-selection surface (camera capture or
// gallery picker). Returning common.ErrAcquisitionCancelled means the user
// dismissed it without choosing a file.
type FileSelector interface {
	Select(ctx context.Context, capture bool) (*Payload, error)
}

// Acquirer obtains a single image from one of three sources. At most one
// acquisition may be in flight.
type Acquirer struct {
	selector FileSelector
	haptics  device.Haptics
	logger   *slog.Logger
	busy     atomic.Bool
}

func NewAcquirer(selector FileSelector, haptics device.Haptics, logger *slog.Logger) *Acquirer {
	if haptics == nil {
		haptics = device.NopHaptics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{selector: selector, haptics: haptics, logger: logger}
}

// Acquire opens the platform selection surface for the camera or gallery
// source. A second call while one is pending fails with ErrAcquisitionBusy.
func (a *Acquirer) Acquire(ctx context.Context, src Source) (*Payload, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, common.ErrAcquisitionBusy
	}
	defer a.busy.Store(false)

	// Pulse on initiation, not completion. Best-effort.
	a.haptics.Pulse(50 * time.Millisecond)

	p, err := a.selector.Select(ctx, src == SourceCamera)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil, common.ErrAcquisitionCancelled
		}
		return nil, err
	}
	finish(p)
	a.logger.Debug("acquire.ok", "source", src, "name", p.Name, "mime", p.MIME, "bytes", len(p.Data))
	return p, nil
}

// AcceptDrop filters a drag-and-drop payload. Non-image drops are silently
// ignored: (nil, false), no error, no state change.
func (a *Acquirer) AcceptDrop(name, declaredMIME string, data []byte) (*Payload, bool) {
	mime := strings.ToLower(strings.TrimSpace(declaredMIME))
	if (mime == "" || mime == "application/octet-stream") && len(data) > 0 {
		mime = http.DetectContentType(data)
	}
	if !constants.IsImageMIME(mime) {
		a.logger.Debug("acquire.drop.ignored", "name", name, "mime", mime)
		return nil, false
	}
	a.haptics.Pulse(50 * time.Millisecond)
	p := &Payload{Data: data, MIME: mime, Name: name}
	finish(p)
	return p, true
}

func finish(p *Payload) {
	if p.MIME == "" && len(p.Data) > 0 {
		p.MIME = http.DetectContentType(p.Data)
	}
}
