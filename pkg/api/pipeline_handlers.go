package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/streamhub/pipeliner/pkg/loader"
	"github.com/streamhub/pipeliner/pkg/registry"
	"github.com/streamhub/pipeliner/pkg/schedule"
	"github.com/streamhub/pipeliner/pkg/storage"
)

// handleListPipelines handles listing pipelines for the caller's organization
func (s *Server) handleListPipelines(w http.ResponseWriter, r *http.Request) {
	infos, err := s.pipelineRegistry.List(orgID(r))
	if err != nil {
		http.Error(w, "Failed to list pipelines", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, infos)
}

// handleCreatePipeline handles pipeline creation
func (s *Server) handleCreatePipeline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.pipelineRegistry.Create(orgID(r), req.Content)
	if err != nil {
		if errors.Is(err, registry.ErrValidationFailed) || errors.Is(err, registry.ErrInvalidDefinition) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id": id,
	})
}

// handleGetPipeline handles retrieving a pipeline definition
func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	content, err := s.pipelineRegistry.Get(orgID(r), id)
	if err != nil {
		http.Error(w, "Pipeline not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(content))
}

// handleUpdatePipeline handles replacing a pipeline definition
func (s *Server) handleUpdatePipeline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.pipelineRegistry.Update(orgID(r), id, req.Content); err != nil {
		switch {
		case errors.Is(err, storage.ErrPipelineNotFound):
			http.Error(w, "Pipeline not found", http.StatusNotFound)
		case errors.Is(err, registry.ErrValidationFailed), errors.Is(err, registry.ErrInvalidDefinition):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeletePipeline handles deleting a pipeline
func (s *Server) handleDeletePipeline(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.pipelineRegistry.Delete(orgID(r), id); err != nil {
		if errors.Is(err, storage.ErrPipelineNotFound) {
			http.Error(w, "Pipeline not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleValidatePipeline validates a definition without saving it. The editor
// calls this on every change, so an invalid definition is a 200 with the error
// list, not an HTTP failure.
func (s *Server) handleValidatePipeline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PipelineID string `json:"pipeline_id,omitempty"`
		Content    string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.pipelineRegistry.Validate(orgID(r), req.PipelineID, req.Content)
	if err != nil {
		if errors.Is(err, registry.ErrInvalidDefinition) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handlePipelineSchedule returns trigger previews for a pipeline's query nodes
func (s *Server) handlePipelineSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	content, err := s.pipelineRegistry.Get(orgID(r), id)
	if err != nil {
		http.Error(w, "Pipeline not found", http.StatusNotFound)
		return
	}

	p, err := loader.NewLoader().Parse([]byte(content))
	if err != nil {
		http.Error(w, "Stored definition does not parse", http.StatusInternalServerError)
		return
	}

	previews := schedule.ForPipeline(p, time.Now(), schedule.DefaultRunCount)
	writeJSON(w, http.StatusOK, previews)
}
