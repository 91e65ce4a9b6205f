package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/checkam/scanverifier/constants"
	"github.com/checkam/scanverifier/internal/common"
	"github.com/checkam/scanverifier/internal/device"
	"github.com/checkam/scanverifier/internal/scan"
	"github.com/checkam/scanverifier/internal/server/api"
	"github.com/checkam/scanverifier/internal/verify"
)

type sessionView struct {
	SessionID   string       `json:"session_id"`
	Stage       string       `json:"stage"`
	Candidate   string       `json:"candidate,omitempty"`
	Progress    string       `json:"progress,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
	Destination string       `json:"destination,omitempty"`
	Outcome     *outcomeView `json:"outcome,omitempty"`
}

type outcomeView struct {
	Tag    string         `json:"tag"`
	Status string         `json:"status"`
	Code   string         `json:"code"`
	Name   string         `json:"name,omitempty"`
	Record map[string]any `json:"record,omitempty"`
}

func viewOf(snap scan.Snapshot) sessionView {
	v := sessionView{
		SessionID:   snap.ID.String(),
		Stage:       string(snap.Stage),
		Candidate:   snap.Candidate,
		Progress:    snap.Progress,
		LastError:   snap.LastError,
		Destination: string(snap.Destination),
	}
	if snap.Outcome != nil {
		v.Outcome = outcomeOf(*snap.Outcome)
	}
	return v
}

func outcomeOf(o verify.Outcome) *outcomeView {
	return &outcomeView{
		Tag:    string(o.Tag),
		Status: o.Status,
		Code:   o.Code,
		Name:   o.Name,
		Record: o.Record,
	}
}

// handleCapabilities mirrors the front end's camera-vs-upload branch as a
// capability flag derived from the caller's user agent.
func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	api.Wrap(func(r *http.Request) (any, *api.APIError) {
		return map[string]bool{
			"has_camera": device.MobileUserAgent(r.UserAgent()),
		}, nil
	})(w, r)
}

// handleCreateScan accepts a multipart image upload, opens a fresh session
// and runs extraction. A non-image upload is acknowledged and ignored, the
// same way the drop zone ignores non-image drops.
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	api.Wrap(func(r *http.Request) (any, *api.APIError) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
			return nil, &api.APIError{Status: http.StatusBadRequest, Err: api.Error{Code: "bad_multipart", Message: "expected multipart form with an image field"}}
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			return nil, &api.APIError{Status: http.StatusBadRequest, Err: api.Error{Code: "missing_image", Message: "image field is required"}}
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, &api.APIError{Status: http.StatusBadRequest, Err: api.Error{Code: "bad_upload", Message: "could not read upload"}}
		}

		sess := scan.NewSession()
		candidate, err := s.pipeline.Drop(r.Context(), sess, header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			// Extraction and normalization failures share one remediation.
			return nil, &api.APIError{Status: http.StatusUnprocessableEntity, Err: api.Error{Code: "scan_failed", Message: constants.RemediationMessage}}
		}
		if candidate == "" {
			// Non-image payload: no session, no state change.
			return map[string]bool{"ignored": true}, nil
		}

		s.registry.add(sess)
		s.logger.Info("server.scan.created", "session_id", sess.ID, "file", header.Filename)
		return viewOf(sess.Snapshot()), nil
	})(w, r)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	api.Wrap(func(r *http.Request) (any, *api.APIError) {
		sess, apiErr := s.session(r)
		if apiErr != nil {
			return nil, apiErr
		}
		return viewOf(sess.Snapshot()), nil
	})(w, r)
}

type confirmRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	api.Wrap(func(r *http.Request) (any, *api.APIError) {
		sess, apiErr := s.session(r)
		if apiErr != nil {
			return nil, apiErr
		}
		var req confirmRequest
		if jerr := api.ReadJSON(r, &req); jerr != nil {
			return nil, jerr
		}

		ctx := common.WithSessionID(r.Context(), sess.ID.String())
		res, err := s.pipeline.Confirm(ctx, sess, req.Code)
		switch {
		case err == nil:
			s.registry.remove(sess.ID)
			return map[string]any{
				"destination": string(res.Destination),
				"outcome":     outcomeOf(res.Outcome),
			}, nil
		case errors.Is(err, common.ErrEmptyCode):
			return nil, &api.APIError{Status: http.StatusBadRequest, Err: api.Error{Code: "empty_code", Message: "code must not be empty"}}
		case errors.Is(err, common.ErrVerifyInFlight):
			return nil, &api.APIError{Status: http.StatusConflict, Err: api.Error{Code: "verify_in_flight", Message: "verification already in progress"}}
		case errors.Is(err, common.ErrUnknownStatus):
			return nil, &api.APIError{Status: http.StatusBadGateway, Err: api.Error{Code: "unknown_status", Message: constants.UnknownMessage}}
		case errors.Is(err, common.ErrTransport):
			return nil, &api.APIError{Status: http.StatusBadGateway, Err: api.Error{Code: "network_error", Message: constants.TransportMessage}}
		default:
			return nil, &api.APIError{Status: http.StatusConflict, Err: api.Error{Code: "bad_stage", Message: err.Error()}}
		}
	})(w, r)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	api.Wrap(func(r *http.Request) (any, *api.APIError) {
		sess, apiErr := s.session(r)
		if apiErr != nil {
			return nil, apiErr
		}
		if err := s.pipeline.Dismiss(sess); err != nil {
			return nil, &api.APIError{Status: http.StatusConflict, Err: api.Error{Code: "verify_in_flight", Message: "verification already in progress"}}
		}
		s.registry.remove(sess.ID)
		return map[string]string{"stage": string(scan.StageIdle)}, nil
	})(w, r)
}

func (s *Server) session(r *http.Request) (*scan.Session, *api.APIError) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return nil, &api.APIError{Status: http.StatusBadRequest, Err: api.Error{Code: "bad_id", Message: "session id must be a uuid"}}
	}
	sess, ok := s.registry.get(id)
	if !ok {
		return nil, &api.APIError{Status: http.StatusNotFound, Err: api.Error{Code: "not_found", Message: "no such scan session"}}
	}
	return sess, nil
}
