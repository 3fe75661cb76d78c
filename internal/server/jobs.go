package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/joseph-ayodele/plan-parser/internal/export"
	"github.com/joseph-ayodele/plan-parser/internal/repository"
)

type jobsHandler struct {
	jobs   repository.AnalysisJobRepository
	export *export.Service
	logger *slog.Logger
}

func (h *jobsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	jobs, err := h.jobs.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("jobs.list_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list jobs failed")
		return
	}
	summaries := make([]entity.AnalysisJob, len(jobs))
	for i, j := range jobs {
		summaries[i] = *j
		summaries[i].ResultJSON = nil
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": summaries})
}

func (h *jobsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *jobsHandler) result(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, id, err)
		return
	}
	if len(job.ResultJSON) == 0 {
		writeError(w, http.StatusNotFound, "job has no result")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(json.RawMessage(job.ResultJSON))
}

func (h *jobsHandler) xlsx(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}
	b, err := h.export.ExportJobXLSX(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, id, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rooms-%s.xlsx"`, id))
	_, _ = w.Write(b)
}

func (h *jobsHandler) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *jobsHandler) writeLookupError(w http.ResponseWriter, id uuid.UUID, err error) {
	if errors.Is(err, repository.ErrJobNotFound) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	h.logger.Error("jobs.lookup_failed", "job_id", id, "error", err)
	writeError(w, http.StatusInternalServerError, "job lookup failed")
}
