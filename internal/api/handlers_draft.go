package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/memoire/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type draftRequest struct {
	SectionIDs []string `json:"section_ids"`
}

// handleDraft queues a drafting job for the project's pending sections, or
// for the listed sections when section_ids is given.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "drafting unavailable", http.StatusServiceUnavailable)
		return
	}
	var req draftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := s.repo.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.projectError(w, r, err)
		return
	}

	job := pipeline.NewJob(p.ID, req.SectionIDs)
	if err := s.orchestrator.Submit(job); err != nil {
		if errors.Is(err, pipeline.ErrJobActive) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":     job.ID,
		"project_id": job.ProjectID,
		"status":     pipeline.StatusQueued,
		"poll_url":   fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
