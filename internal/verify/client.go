package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/checkam/scanverifier/internal/common"
)

// Client submits confirmed codes to the remote verification service. One
// network call per Verify, no internal retry; retry policy belongs to the
// transport collaborator.
type Client struct {
	http    *http.Client
	url     string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(cfg common.VerifyConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 2
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		url:     cfg.APIURL,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
		logger:  logger,
	}
}

type verifyRequest struct {
	Code string `json:"code"`
}

// Verify sends code to the service and maps the response to an Outcome.
// Connectivity failures and non-2xx responses return ErrTransport; a
// well-formed response with an unrecognized status is NOT an error here —
// it comes back as a TagUnknown outcome.
func (c *Client) Verify(ctx context.Context, code string) (Outcome, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Outcome{}, common.WrapError(common.ErrTransport, err.Error())
	}

	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	logger := c.logger
	if sessID := common.SessionIDFromContext(ctx); sessID != "" {
		logger = logger.With("session_id", sessID)
	}
	start := time.Now()

	bs, err := json.Marshal(verifyRequest{Code: code})
	if err != nil {
		return Outcome{}, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("verify.http.build_request_error", "req_id", reqID, "error", err)
		return Outcome{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("verify.http.request",
		"req_id", reqID,
		"url", c.url,
		"content_length", len(bs),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("verify.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Outcome{}, common.WrapError(common.ErrTransport, err.Error())
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			logger.Warn("verify.http.response_body_close_error", "req_id", reqID, "error", cerr)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("verify.http.read_body_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Outcome{}, common.WrapError(common.ErrTransport, err.Error())
	}

	logger.Info("verify.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return Outcome{}, common.WrapError(common.ErrTransport, fmt.Sprintf("non-2xx status: %d", resp.StatusCode))
	}

	out := parseOutcome(code, raw)
	if out.Tag == TagUnknown {
		logger.Warn("verify.response.unknown_status", "req_id", reqID, "status", out.Status)
	}
	return out, nil
}
