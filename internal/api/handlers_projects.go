package api

import (
	"net/http"

	"github.com/dgallion1/memoire/internal/llm"
	"github.com/dgallion1/memoire/internal/outline"
	"github.com/dgallion1/memoire/internal/project"
	"github.com/go-chi/chi/v5"
)

// outlineInput is either free text or structured chapters.
type outlineInput struct {
	OutlineText string            `json:"outline_text"`
	Chapters    []llm.OutlineItem `json:"chapters"`
}

func (in outlineInput) chapters() []outline.Chapter {
	if in.OutlineText != "" {
		return outline.Parse(in.OutlineText)
	}
	if len(in.Chapters) > 0 {
		return llm.BuildOutline(in.Chapters)
	}
	return []outline.Chapter{}
}

type createProjectRequest struct {
	Title    string `json:"title"`
	Topic    string `json:"topic"`
	Field    string `json:"field"`
	Level    string `json:"level"`
	Language string `json:"language"`
	outlineInput
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	p := project.New(req.Title, req.Topic, req.chapters())
	if p.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	p.Field = req.Field
	p.Level = req.Level
	p.Language = req.Language

	if err := s.repo.Save(r.Context(), p); err != nil {
		s.projectError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/projects/"+p.ID)
	writeJSON(w, http.StatusCreated, projectView(p))
}

type projectResponse struct {
	*project.Project
	Progress project.Progress `json:"progress"`
}

func projectView(p *project.Project) projectResponse {
	return projectResponse{Project: p, Progress: p.Progress()}
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.repo.List(r.Context())
	if err != nil {
		s.projectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": summaries})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.projectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projectView(p))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.projectError(w, r, err)
		return
	}
	if s.index != nil {
		if err := s.index.RemoveProject(id); err != nil {
			s.log.Warn("remove from index failed", "project_id", id, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceOutline(w http.ResponseWriter, r *http.Request) {
	var in outlineInput
	if err := decodeJSON(w, r, &in); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	chapters := in.chapters()
	s.update(w, r, http.StatusOK, func(p *project.Project) (any, error) {
		p.ReplaceOutline(chapters)
		return projectView(p), nil
	})
	s.reindex(r, chi.URLParam(r, "projectID"))
}

type titleRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAddChapter(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.update(w, r, http.StatusCreated, func(p *project.Project) (any, error) {
		ch, err := p.AddChapter(req.Title)
		if err != nil {
			return nil, err
		}
		return *ch, nil
	})
}

func (s *Server) handleRenameChapter(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	chapterID := chi.URLParam(r, "chapterID")
	s.update(w, r, http.StatusOK, func(p *project.Project) (any, error) {
		if err := p.RenameChapter(chapterID, req.Title); err != nil {
			return nil, err
		}
		return projectView(p), nil
	})
}

func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	chapterID := chi.URLParam(r, "chapterID")
	s.update(w, r, http.StatusNoContent, func(p *project.Project) (any, error) {
		return nil, p.RemoveChapter(chapterID)
	})
	s.reindex(r, chi.URLParam(r, "projectID"))
}

func (s *Server) handleAddSection(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	chapterID := chi.URLParam(r, "chapterID")
	s.update(w, r, http.StatusCreated, func(p *project.Project) (any, error) {
		sec, err := p.AddSection(chapterID, req.Title)
		if err != nil {
			return nil, err
		}
		return *sec, nil
	})
}

type updateSectionRequest struct {
	Title   *string         `json:"title"`
	Content *string         `json:"content"`
	Status  *outline.Status `json:"status"`
}

// handleUpdateSection renames a section, replaces its content (marking it
// completed) or sets its status. Fields left out are unchanged.
func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var req updateSectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	chapterID := chi.URLParam(r, "chapterID")
	sectionID := chi.URLParam(r, "sectionID")
	s.update(w, r, http.StatusOK, func(p *project.Project) (any, error) {
		ch, sec, err := p.FindSection(sectionID)
		if err != nil {
			return nil, err
		}
		if ch.ID != chapterID {
			return nil, project.ErrSectionNotFound
		}
		if req.Title != nil {
			if err := p.RenameSection(sectionID, *req.Title); err != nil {
				return nil, err
			}
		}
		if req.Content != nil {
			if err := p.SetSectionContent(sectionID, *req.Content); err != nil {
				return nil, err
			}
		}
		if req.Status != nil {
			if err := p.SetSectionStatus(sectionID, *req.Status); err != nil {
				return nil, err
			}
		}
		return *sec, nil
	})
	if req.Content != nil {
		s.reindex(r, chi.URLParam(r, "projectID"))
	}
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	chapterID := chi.URLParam(r, "chapterID")
	sectionID := chi.URLParam(r, "sectionID")
	s.update(w, r, http.StatusNoContent, func(p *project.Project) (any, error) {
		return nil, p.RemoveSection(chapterID, sectionID)
	})
	s.reindex(r, chi.URLParam(r, "projectID"))
}

// update applies fn to the project named in the URL and writes its result.
func (s *Server) update(w http.ResponseWriter, r *http.Request, code int, fn func(*project.Project) (any, error)) {
	var result any
	_, err := s.repo.Update(r.Context(), chi.URLParam(r, "projectID"), func(p *project.Project) error {
		var err error
		result, err = fn(p)
		return err
	})
	if err != nil {
		s.projectError(w, r, err)
		return
	}
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}
	writeJSON(w, code, result)
}

// reindex refreshes the search documents of a project after an edit.
func (s *Server) reindex(r *http.Request, projectID string) {
	if s.index == nil {
		return
	}
	p, err := s.repo.Get(r.Context(), projectID)
	if err != nil {
		return
	}
	if _, err := s.index.IndexProject(p.ID, p.Chapters); err != nil {
		s.log.Warn("reindex failed", "project_id", projectID, "error", err)
	}
}
