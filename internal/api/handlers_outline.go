package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/memoire/internal/llm"
	"github.com/dgallion1/memoire/internal/outline"
	"github.com/dgallion1/memoire/internal/parser"
)

type parseRequest struct {
	Text string `json:"text"`
}

type outlineResponse struct {
	Chapters []outline.Chapter `json:"chapters"`
	Sections int               `json:"sections"`
}

func newOutlineResponse(chapters []outline.Chapter) outlineResponse {
	return outlineResponse{Chapters: chapters, Sections: outline.CountSections(chapters)}
}

func (s *Server) handleParseOutline(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, newOutlineResponse(outline.Parse(req.Text)))
}

func (s *Server) handleImportOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if header.Size > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	chapters, err := p.Parse(file, filename)
	if err != nil {
		s.log.Warn("import failed", "filename", filename, "error", err)
		jsonError(w, "could not read file: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, newOutlineResponse(chapters))
}

type generateRequest struct {
	Title    string `json:"title"`
	Topic    string `json:"topic"`
	Field    string `json:"field"`
	Level    string `json:"level"`
	Language string `json:"language"`
}

func (req generateRequest) brief() llm.Brief {
	return llm.Brief{
		Title:    strings.TrimSpace(req.Title),
		Topic:    strings.TrimSpace(req.Topic),
		Field:    strings.TrimSpace(req.Field),
		Level:    strings.TrimSpace(req.Level),
		Language: strings.TrimSpace(req.Language),
	}
}

func (s *Server) handleGenerateOutline(w http.ResponseWriter, r *http.Request) {
	if s.claude == nil {
		jsonError(w, "outline generation unavailable", http.StatusServiceUnavailable)
		return
	}
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	b := req.brief()
	if b.Topic == "" {
		jsonError(w, "topic is required", http.StatusBadRequest)
		return
	}
	if err := llm.ScreenInput(strings.Join([]string{b.Title, b.Topic, b.Field, b.Level}, "\n")); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	chapters, err := s.claude.GenerateOutline(r.Context(), b)
	if err != nil {
		s.llmError(w, "generate outline", err)
		return
	}
	writeJSON(w, http.StatusOK, newOutlineResponse(chapters))
}

// llmError reports a model failure. Transient upstream errors map to 503.
func (s *Server) llmError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", "error", err)
	var retryErr *llm.RetryableError
	if errors.As(err, &retryErr) {
		jsonError(w, "language model temporarily unavailable, retry later", http.StatusServiceUnavailable)
		return
	}
	jsonError(w, op+": "+err.Error(), http.StatusBadGateway)
}
