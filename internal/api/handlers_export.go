package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/memoire/internal/export"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		jsonError(w, "search unavailable", http.StatusServiceUnavailable)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		jsonError(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	p, err := s.repo.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.projectError(w, r, err)
		return
	}
	hits, err := s.index.Search(p.ID, q, limit)
	if err != nil {
		s.log.Error("search failed", "project_id", p.ID, "error", err)
		jsonError(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query": q,
		"hits":  hits,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := s.repo.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.projectError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, p, format); err != nil {
		s.log.Error("export failed", "project_id", p.ID, "format", format, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}

	etag := `"` + export.ContentHash(buf.Bytes())[:32] + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(p, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
