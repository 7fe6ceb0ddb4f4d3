// Package handlers implements the HTTP endpoints for submitting statements
// and polling parse jobs.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/statementlab/bankparse/internal/api/middleware"
	"github.com/statementlab/bankparse/internal/gcs"
	"github.com/statementlab/bankparse/internal/jobs"
)

// maxUploadBytes caps multipart statement uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// StatementsHandler handles statement submission endpoints.
type StatementsHandler struct {
	publisher jobs.Publisher
	spoolDir  string
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler. Uploaded files are
// spooled under spoolDir until the worker picks them up.
func NewStatementsHandler(publisher jobs.Publisher, spoolDir string, log zerolog.Logger) *StatementsHandler {
	if spoolDir == "" {
		spoolDir = os.TempDir()
	}
	return &StatementsHandler{
		publisher: publisher,
		spoolDir:  spoolDir,
		log:       log,
	}
}

// SubmitStatement handles POST /api/statements. It accepts either a
// multipart upload (field "file") or a JSON body naming a gs:// URI, and
// responds 202 with the job ID to poll.
func (h *StatementsHandler) SubmitStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sourceURI, err := h.resolveSource(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.ParseStatementJob{SourceURI: sourceURI}
	if err := h.publisher.PublishParseStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("source", sourceURI).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parse job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("source", sourceURI).Msg("Parse job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// resolveSource extracts the statement source from the request: a spooled
// copy of an uploaded file, or a gs:// URI from a JSON body.
func (h *StatementsHandler) resolveSource(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return "", fmt.Errorf("invalid multipart body: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("file field is required")
		}
		defer file.Close()
		return h.spool(file, header.Filename)
	}

	var req struct {
		GCSURI string `json:"gcs_uri"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", fmt.Errorf("invalid request body")
	}
	if !gcs.IsURI(req.GCSURI) {
		return "", fmt.Errorf("gcs_uri must be a gs:// URI")
	}
	return req.GCSURI, nil
}

func (h *StatementsHandler) spool(src io.Reader, filename string) (string, error) {
	name := uuid.NewString() + "-" + filepath.Base(filename)
	path := filepath.Join(h.spoolDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to spool upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to spool upload: %w", err)
	}
	return path, nil
}

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}. A completed job carries the full parse
// result in its body.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

// NewRouter wires the API routes onto a fresh mux.
func NewRouter(statements *StatementsHandler, jobsHandler *JobsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/statements", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			statements.SubmitStatement(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	health := func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
	mux.HandleFunc("/health", health)
	mux.HandleFunc("/api/healthz", health)

	return mux
}
