package handlers

import (
	"net/http"
	"strings"

	"github.com/alumnet/apiserver/internal/services"
	"github.com/alumnet/apiserver/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// JobHandler provides HTTP handlers for the job board.
type JobHandler struct {
	jobService *services.JobService
	logger     *zap.Logger
}

// ApplyResponse confirms a job application.
type ApplyResponse struct {
	Message string    `json:"message"`
	Job     types.Job `json:"job"`
}

// NewJobHandler constructs a JobHandler.
func NewJobHandler(jobService *services.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{jobService: jobService, logger: logger}
}

// JobRouter registers job routes on the given router.
func JobRouter(r chi.Router, jobService *services.JobService, authMiddleware func(http.Handler) http.Handler, logger *zap.Logger) {
	handler := NewJobHandler(jobService, logger)

	r.Get("/", handler.ListJobs)
	r.With(authMiddleware).Post("/", handler.CreateJob)
	r.Route("/{jobID}", func(r chi.Router) {
		r.Get("/", handler.GetJob)
		r.With(authMiddleware).Put("/", handler.UpdateJob)
		r.With(authMiddleware).Delete("/", handler.DeleteJob)
		r.With(authMiddleware).Post("/apply", handler.Apply)
	})
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "jobID")
	if !ok {
		return
	}
	job, err := h.jobService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var input types.JobInput
	if !decodeJSON(w, r, &input) {
		return
	}
	job, err := h.jobService.Create(r.Context(), actor, input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "jobID")
	if !ok {
		return
	}
	var update types.JobUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	job, err := h.jobService.Update(r.Context(), actor, id, update)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "jobID")
	if !ok {
		return
	}
	if err := h.jobService.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Job removed"})
}

func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "jobID")
	if !ok {
		return
	}
	job, err := h.jobService.Apply(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ApplyResponse{Message: "Application submitted", Job: job})
}
