// Package handlers provides HTTP handlers for the slide worker API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lecturalab/slide-worker/internal/domain"
	"github.com/lecturalab/slide-worker/internal/observability"
)

// JobProcessor runs a job in the background and reports the outcome
// through the callback.
type JobProcessor interface {
	Process(ctx context.Context, req domain.JobRequest)
}

// ProcessHandler accepts lecture processing jobs.
type ProcessHandler struct {
	logger *observability.Logger
	runner JobProcessor
}

// NewProcessHandler creates a process handler.
func NewProcessHandler(logger *observability.Logger, runner JobProcessor) *ProcessHandler {
	return &ProcessHandler{
		logger: logger,
		runner: runner,
	}
}

// ProcessRequestDTO represents the API request for POST /process.
type ProcessRequestDTO struct {
	JobID    string `json:"jobId"`
	S3Key    string `json:"s3Key"`
	Email    string `json:"email"`
	Language string `json:"language,omitempty"`
}

// ProcessResponseDTO represents the accepted response.
type ProcessResponseDTO struct {
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Process handles POST /process. It validates the request, queues the
// job for background processing and returns 202 immediately. The job
// outcome is reported via the signed callback, never in this response.
func (h *ProcessHandler) Process(w http.ResponseWriter, r *http.Request) {
	var reqDTO ProcessRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.JobID == "" || reqDTO.S3Key == "" || reqDTO.Email == "" {
		h.writeError(w, http.StatusBadRequest, "Missing required fields: jobId, s3Key, email", "")
		return
	}

	language := reqDTO.Language
	if language == "" {
		language = domain.DefaultLanguage
	}

	h.logger.Info().
		Str("job_id", reqDTO.JobID).
		Str("s3_key", reqDTO.S3Key).
		Str("email", reqDTO.Email).
		Str("language", language).
		Msg("Received process request")

	job := domain.JobRequest{
		JobID:    reqDTO.JobID,
		S3Key:    reqDTO.S3Key,
		Email:    reqDTO.Email,
		Language: language,
	}

	// The request context dies with the response; the job gets its own.
	go h.runner.Process(context.Background(), job)

	resp := ProcessResponseDTO{
		JobID:   reqDTO.JobID,
		Status:  "accepted",
		Message: "Processing started",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(resp)
}

func (h *ProcessHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
