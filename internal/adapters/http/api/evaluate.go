// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/keunyop/rubricheck/internal/adapters/extract"
	"github.com/keunyop/rubricheck/internal/domain/model"
	"github.com/keunyop/rubricheck/internal/domain/textnorm"
	"github.com/keunyop/rubricheck/pkg/metrics"
)

// EvaluateHandler handles grading requests.
type EvaluateHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Dependencies, maxUploadBytes int64) *EvaluateHandler {
	return &EvaluateHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// HandleEvaluate handles POST /api/evaluate requests. The rubric and
// the assignment each arrive as exactly one of a file upload or pasted
// text.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", WrapKind(op, ErrFileTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "missing_input", WrapKind(op, ErrBadRequest, err))
		return
	}

	rubricText, err := h.sourceText(r, "rubric")
	if err != nil {
		status, code := sourceError(err)
		writeFieldError(w, status, code, "rubric", err)
		return
	}

	assignmentText, err := h.sourceText(r, "assignment")
	if err != nil {
		status, code := sourceError(err)
		writeFieldError(w, status, code, "assignment", err)
		return
	}

	req := model.Request{
		ID:             uuid.NewString(),
		RubricText:     rubricText,
		AssignmentText: assignmentText,
	}

	rep, err := h.deps.Evaluate(r.Context(), req)
	if err != nil {
		status, code := evaluationError(err)
		writeError(w, status, code, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// sourceText resolves one input field from either its file upload or
// its pasted text form value. Exactly one of the two must be present.
func (h *EvaluateHandler) sourceText(r *http.Request, field string) (string, error) {
	text := strings.TrimSpace(r.FormValue(field + "_text"))

	file, header, err := r.FormFile(field + "_file")
	switch {
	case err == nil:
		defer file.Close()

		if text != "" {
			return "", fmt.Errorf("%w: provide %s_file or %s_text, not both", ErrBadRequest, field, field)
		}

		data, readErr := io.ReadAll(file)
		if readErr != nil {
			return "", fmt.Errorf("read %s upload: %w", field, readErr)
		}
		metrics.RecordUploadBytes(int64(len(data)))

		return extract.Text(header.Filename, data)

	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		if text == "" {
			return "", fmt.Errorf("%w: %s_file or %s_text is required", ErrBadRequest, field, field)
		}
		return textnorm.Normalize(text), nil

	default:
		return "", fmt.Errorf("read %s upload: %w", field, err)
	}
}
