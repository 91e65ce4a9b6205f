package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/acquire"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/ocr"
	"github.com/checkam/scanverifier/internal/scan"
	"github.com/checkam/scanverifier/internal/server/api"
	"github.com/checkam/scanverifier/internal/verify"
)

type fixedExtractor struct {
	text string
	err  error
}

func (f fixedExtractor) Extract(ctx context.Context, img *acquire.Payload, progress ocr.ProgressFunc) (ocr.RawResult, error) {
	if f.err != nil {
		return ocr.RawResult{}, f.err
	}
	return ocr.RawResult{Text: f.text}, nil
}

type fixedVerifier struct {
	out verify.Outcome
	err error
}

func (f fixedVerifier) Verify(ctx context.Context, code string) (verify.Outcome, error) {
	out := f.out
	out.Code = code
	return out, f.err
}

func newTestServer(ext fixedExtractor, ver fixedVerifier) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	acq := acquire.NewAcquirer(nil, nil, logger)
	pipeline := scan.NewPipeline(acq, ext, ver, nil, logger)
	return New(pipeline, common.ServerConfig{MaxUploadBytes: 1 << 20}, logger)
}

func uploadImage(t *testing.T, srv *Server, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/scans", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) api.Response {
	t.Helper()
	var resp api.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp
}

func TestScanUploadThenConfirm(t *testing.T) {
	srv := newTestServer(
		fixedExtractor{text: " NF-12345 "},
		fixedVerifier{out: verify.Outcome{Tag: verify.TagVerified, Status: "verified", Record: map[string]any{"name": "Paracetamol 500mg"}}},
	)

	rec := uploadImage(t, srv, "code.png", "image/png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status: %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.OK {
		t.Fatalf("upload not ok: %+v", resp.Error)
	}
	data := resp.Data.(map[string]any)
	if data["candidate"] != "NF-12345" {
		t.Fatalf("candidate: got %v", data["candidate"])
	}
	if data["stage"] != string(scan.StageAwaitingConfirmation) {
		t.Fatalf("stage: got %v", data["stage"])
	}
	id := data["session_id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/v1/scans/"+id+"/confirm", strings.NewReader(`{"code":"NF-12345"}`))
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status: %d body=%s", rec.Code, rec.Body.String())
	}
	resp = decodeResponse(t, rec)
	verdict := resp.Data.(map[string]any)
	if verdict["destination"] != string(scan.DestVerified) {
		t.Fatalf("destination: got %v", verdict["destination"])
	}
	outcome := verdict["outcome"].(map[string]any)
	if outcome["record"].(map[string]any)["name"] != "Paracetamol 500mg" {
		t.Fatalf("record: got %v", outcome["record"])
	}

	// Session is gone after resolution.
	req = httptest.NewRequest(http.MethodGet, "/v1/scans/"+id, nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after resolve: got %d, want 404", rec.Code)
	}
}

func TestScanUpload_ExtractionFailureSurfacesRemediation(t *testing.T) {
	srv := newTestServer(fixedExtractor{err: common.ErrLowConfidence}, fixedVerifier{})

	rec := uploadImage(t, srv, "code.png", "image/png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Message != constants.RemediationMessage {
		t.Fatalf("error: %+v", resp.Error)
	}
}

func TestScanUpload_NonImageIgnored(t *testing.T) {
	srv := newTestServer(fixedExtractor{text: "NF-12345"}, fixedVerifier{})

	rec := uploadImage(t, srv, "notes.txt", "text/plain", []byte("plain words"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	if data["ignored"] != true {
		t.Fatalf("data: got %v", data)
	}
}

func TestConfirm_UnknownStatusIsBadGateway(t *testing.T) {
	srv := newTestServer(
		fixedExtractor{text: "NF-12345"},
		fixedVerifier{out: verify.Outcome{Tag: verify.TagUnknown, Status: "pending"}},
	)

	rec := uploadImage(t, srv, "code.png", "image/png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0})
	id := decodeResponse(t, rec).Data.(map[string]any)["session_id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/v1/scans/"+id+"/confirm", strings.NewReader(`{"code":"NF-12345"}`))
	rec2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d", rec2.Code)
	}
	resp := decodeResponse(t, rec2)
	if resp.Error == nil || resp.Error.Code != "unknown_status" {
		t.Fatalf("error: %+v", resp.Error)
	}
}

func TestDismissReturnsIdleAndDropsSession(t *testing.T) {
	srv := newTestServer(fixedExtractor{text: "NF-12345"}, fixedVerifier{})

	rec := uploadImage(t, srv, "code.png", "image/png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0})
	id := decodeResponse(t, rec).Data.(map[string]any)["session_id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/v1/scans/"+id+"/dismiss", nil)
	rec2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("dismiss status: %d", rec2.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/scans/"+id, nil)
	rec2 = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("get after dismiss: got %d, want 404", rec2.Code)
	}
}

func TestCapabilitiesFollowsUserAgent(t *testing.T) {
	srv := newTestServer(fixedExtractor{}, fixedVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/v1/capabilities", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	resp := decodeResponse(t, rec)
	if resp.Data.(map[string]any)["has_camera"] != true {
		t.Fatalf("mobile UA: %v", resp.Data)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/capabilities", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	resp = decodeResponse(t, rec)
	if resp.Data.(map[string]any)["has_camera"] != false {
		t.Fatalf("desktop UA: %v", resp.Data)
	}
}

type ctxRecordingVerifier struct {
	reqID  string
	sessID string
}

func (v *ctxRecordingVerifier) Verify(ctx context.Context, code string) (verify.Outcome, error) {
	v.reqID = common.RequestIDFromContext(ctx)
	v.sessID = common.SessionIDFromContext(ctx)
	return verify.Outcome{Tag: verify.TagVerified, Status: "verified", Code: code}, nil
}

func TestRequestIDStampedAndPropagated(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	acq := acquire.NewAcquirer(nil, nil, logger)
	ver := &ctxRecordingVerifier{}
	pipeline := scan.NewPipeline(acq, fixedExtractor{text: "NF-12345"}, ver, nil, logger)
	srv := New(pipeline, common.ServerConfig{MaxUploadBytes: 1 << 20}, logger)

	rec := uploadImage(t, srv, "code.png", "image/png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status: %d body=%s", rec.Code, rec.Body.String())
	}
	if hdr := rec.Header().Get("X-Request-ID"); hdr == "" {
		t.Fatal("upload response missing X-Request-ID")
	} else if _, err := uuid.Parse(hdr); err != nil {
		t.Fatalf("X-Request-ID not a uuid: %q", hdr)
	}
	id := decodeResponse(t, rec).Data.(map[string]any)["session_id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/v1/scans/"+id+"/confirm", strings.NewReader(`{"code":"NF-12345"}`))
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status: %d body=%s", rec.Code, rec.Body.String())
	}

	if ver.reqID != rec.Header().Get("X-Request-ID") {
		t.Fatalf("verifier saw req_id %q, header says %q", ver.reqID, rec.Header().Get("X-Request-ID"))
	}
	if ver.sessID != id {
		t.Fatalf("verifier saw session_id %q, want %q", ver.sessID, id)
	}
}
