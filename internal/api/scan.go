package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/forgelabs/scanforge/internal/model"
	"github.com/forgelabs/scanforge/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxBodySize      = 1 << 20 // 1 MB

	// maxTimeoutMS caps the per-job deadline override. It must stay below the
	// server's write timeout, or a synchronous scan could outlive its own
	// connection and never deliver the outcome.
	maxTimeoutMS int64 = 5 * 60 * 1000
)

// createScanRequest is the JSON body for POST /v1/scans.
type createScanRequest struct {
	Code      string `json:"code"`
	TimeoutMS int64  `json:"timeout_ms"`
	Isolated  bool   `json:"isolated"`
	JobID     string `json:"job_id"`
}

// listScansResponse wraps the paginated list response.
type listScansResponse struct {
	Scans  []*model.Scan `json:"scans"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// handleCreateScan runs a scan to completion and returns its outcome. A
// timeout or fault is still a 200: the outcome's code field carries the
// classification, it is not an HTTP error.
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req createScanRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Code == "" {
		s.writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if req.TimeoutMS > maxTimeoutMS {
		req.TimeoutMS = maxTimeoutMS
	}

	job := model.NewJob(req.JobID, []byte(req.Code), time.Duration(req.TimeoutMS)*time.Millisecond)

	mode := model.ModeInline
	coord := s.inline
	if req.Isolated {
		mode = model.ModeIsolated
		coord = s.isolated
	}

	record := &model.Scan{
		ID:        job.ID,
		Mode:      mode,
		Status:    model.StatusPending,
		TimeoutMS: req.TimeoutMS,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateScan(r.Context(), record); err != nil {
		s.logger.Error("create scan record", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to create scan")
		return
	}

	out := coord.Execute(r.Context(), job)

	// The finishing write must land even when the client has disconnected —
	// that is exactly the case that produces a canceled-scan fault, and its
	// record would otherwise be stuck at pending.
	if err := s.store.FinishScan(context.WithoutCancel(r.Context()), out, time.Now().UTC()); err != nil {
		s.logger.Error("finish scan record", "job_id", job.ID, "error", err)
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sc, err := s.store.GetScan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		s.logger.Error("get scan", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get scan")
		return
	}

	s.writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	scans, total, err := s.store.ListScans(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list scans", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}

	if scans == nil {
		scans = []*model.Scan{}
	}

	s.writeJSON(w, http.StatusOK, listScansResponse{
		Scans:  scans,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
