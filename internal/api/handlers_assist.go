package api

import (
	"net/http"

	"github.com/dgallion1/memoire/internal/llm"
	"github.com/go-chi/chi/v5"
)

type assistRequest struct {
	Input string `json:"input"`
}

// handleAssist runs one of the career and orientation utilities.
func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	tool := llm.Tool(chi.URLParam(r, "tool"))
	if !llm.ValidTool(tool) {
		jsonError(w, "unknown tool: "+string(tool), http.StatusNotFound)
		return
	}
	if s.claude == nil {
		jsonError(w, "assistant unavailable", http.StatusServiceUnavailable)
		return
	}
	var req assistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := llm.ScreenInput(req.Input); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	answer, err := s.claude.Assist(r.Context(), tool, req.Input)
	if err != nil {
		s.llmError(w, "assist", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"tool":   string(tool),
		"answer": answer,
	})
}
