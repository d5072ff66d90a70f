// Package search keeps a full-text index of drafted thesis content.
package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/dgallion1/memoire/internal/chunker"
	"github.com/dgallion1/memoire/internal/outline"
)

const (
	fieldProject  = "project_id"
	fieldChapter  = "chapter_id"
	fieldSection  = "section_id"
	fieldChTitle  = "chapter"
	fieldSecTitle = "section"
	fieldContent  = "content"

	defaultLimit = 10
	maxLimit     = 50
)

// Hit is one matching chunk.
type Hit struct {
	ChapterID  string   `json:"chapter_id"`
	SectionID  string   `json:"section_id"`
	Breadcrumb []string `json:"breadcrumb"`
	Snippet    string   `json:"snippet"`
	Score      float64  `json:"score"`
}

// Index is an in-memory bleve index partitioned by project.
type Index struct {
	index    bleve.Index
	chunkCfg chunker.Config

	mu   sync.Mutex
	docs map[string][]string // project ID -> document IDs
}

func New(chunkCfg chunker.Config) (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if chunkCfg.MinChunk <= 0 {
		chunkCfg.MinChunk = 1
	}
	return &Index{
		index:    idx,
		chunkCfg: chunkCfg,
		docs:     make(map[string][]string),
	}, nil
}

func newMapping() mapping.IndexMapping {
	ids := bleve.NewTextFieldMapping()
	ids.Analyzer = keyword.Name
	ids.IncludeInAll = false

	text := bleve.NewTextFieldMapping()
	text.Analyzer = fr.AnalyzerName

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(fieldProject, ids)
	doc.AddFieldMappingsAt(fieldChapter, ids)
	doc.AddFieldMappingsAt(fieldSection, ids)
	doc.AddFieldMappingsAt(fieldChTitle, text)
	doc.AddFieldMappingsAt(fieldSecTitle, text)
	doc.AddFieldMappingsAt(fieldContent, text)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = fr.AnalyzerName
	return im
}

// IndexProject replaces every document of a project with the current chunks
// of its drafted sections.
func (x *Index) IndexProject(projectID string, chapters []outline.Chapter) (int, error) {
	chunks := chunker.ChunkChapters(chapters, x.chunkCfg)

	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for _, id := range x.docs[projectID] {
		batch.Delete(id)
	}
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		id := projectID + "/" + strconv.Itoa(c.Index)
		doc := map[string]any{
			fieldProject:  projectID,
			fieldChapter:  c.ChapterID,
			fieldSection:  c.SectionID,
			fieldChTitle:  c.Breadcrumb[0],
			fieldSecTitle: c.Breadcrumb[1],
			fieldContent:  c.Text,
		}
		if err := batch.Index(id, doc); err != nil {
			return 0, fmt.Errorf("add chunk %s to batch: %w", id, err)
		}
		ids = append(ids, id)
	}
	if err := x.index.Batch(batch); err != nil {
		return 0, fmt.Errorf("index batch: %w", err)
	}
	if len(ids) == 0 {
		delete(x.docs, projectID)
	} else {
		x.docs[projectID] = ids
	}
	return len(ids), nil
}

// RemoveProject drops every document of a project.
func (x *Index) RemoveProject(projectID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	ids := x.docs[projectID]
	if len(ids) == 0 {
		return nil
	}
	batch := x.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := x.index.Batch(batch); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	delete(x.docs, projectID)
	return nil
}

// Search matches text against section content and titles within one project.
func (x *Index) Search(projectID, text string, limit int) ([]Hit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Hit{}, nil
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	scope := bleve.NewTermQuery(projectID)
	scope.SetField(fieldProject)

	var fields []query.Query
	for _, f := range []string{fieldContent, fieldSecTitle, fieldChTitle} {
		m := bleve.NewMatchQuery(text)
		m.SetField(f)
		fields = append(fields, m)
	}

	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(scope, bleve.NewDisjunctionQuery(fields...)))
	req.Size = limit
	req.Fields = []string{fieldChapter, fieldSection, fieldChTitle, fieldSecTitle, fieldContent}
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.AddField(fieldContent)

	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		hit.ChapterID, _ = h.Fields[fieldChapter].(string)
		hit.SectionID, _ = h.Fields[fieldSection].(string)
		chTitle, _ := h.Fields[fieldChTitle].(string)
		secTitle, _ := h.Fields[fieldSecTitle].(string)
		hit.Breadcrumb = []string{chTitle, secTitle}
		if frags := h.Fragments[fieldContent]; len(frags) > 0 {
			hit.Snippet = frags[0]
		} else if content, ok := h.Fields[fieldContent].(string); ok {
			hit.Snippet = snippet(content, 200)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DocCount returns the number of indexed chunks.
func (x *Index) DocCount() (uint64, error) {
	return x.index.DocCount()
}

func (x *Index) Close() error {
	return x.index.Close()
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
