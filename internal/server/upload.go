package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/joseph-ayodele/plan-parser/internal/pipeline"
)

// FileProcessor is the pipeline entry point behind the upload API.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path, name string) (pipeline.Outcome, error)
}

// processingError is the error body that still carries usable rooms.
type processingError struct {
	Error  string              `json:"error"`
	Rooms  []entity.RoomRecord `json:"rooms,omitempty"`
	Floors int                 `json:"floors,omitempty"`
}

type uploadHandler struct {
	proc      FileProcessor
	uploadDir string
	maxBytes  int64
	fallback  *entity.AnalysisResult
	observe   func(code string)
	logger    *slog.Logger
}

// ServeHTTP accepts a multipart "file", stores it as {uuid}_{name} in the
// upload directory, runs the pipeline and removes the file on every path.
func (h *uploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.serve(w, r)
	if h.observe != nil {
		h.observe(strconv.Itoa(status))
	}
}

func (h *uploadHandler) serve(w http.ResponseWriter, r *http.Request) int {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return http.StatusRequestEntityTooLarge
		}
		writeError(w, http.StatusBadRequest, "file is required")
		return http.StatusBadRequest
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	v := common.NewValidator().Field("file", name, common.Required, common.DrawingFile, common.MaxLen(200))
	if err := common.ValidateAndReturnError(v); err != nil {
		h.logger.Info("upload.rejected", "file", name, "reason", err)
		writeError(w, http.StatusBadRequest, "Unsupported file type")
		return http.StatusBadRequest
	}
	h.logger.Info("upload.accepted", "file", name, "size", header.Size, "subject", common.SubjectFromContext(r.Context()))

	dst := filepath.Join(h.uploadDir, uuid.NewString()+"_"+name)
	defer func() {
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("upload.cleanup_failed", "path", dst, "error", err)
		}
	}()
	if err := save(dst, file); err != nil {
		h.logger.Error("upload.save_failed", "path", dst, "error", err)
		return h.fail(w, http.StatusInternalServerError, "File save failed")
	}

	out, err := h.proc.ProcessFile(r.Context(), dst, name)
	if err != nil {
		code := common.HTTPStatus(err)
		if common.IsInputError(err) {
			writeError(w, code, err.Error())
			return code
		}
		h.logger.Error("upload.process_failed", "file", name, "error", err)
		return h.fail(w, code, fmt.Sprintf("Processing failed: %v", err))
	}

	w.Header().Set("X-Job-Id", out.JobID.String())
	if out.Cached {
		w.Header().Set("X-Cache", "hit")
	}
	writeJSON(w, http.StatusOK, out.Result)
	return http.StatusOK
}

// fail writes an error body that still embeds the placeholder rooms so
// clients can render something.
func (h *uploadHandler) fail(w http.ResponseWriter, status int, msg string) int {
	body := processingError{Error: msg}
	if h.fallback != nil {
		body.Rooms, body.Floors = h.fallback.Rooms, h.fallback.Floors
	}
	writeJSON(w, status, body)
	return status
}

func save(dst string, src io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
