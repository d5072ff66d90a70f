package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a drafting job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusDrafting  JobStatus = "drafting"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the drafting of some sections of one project.
type Job struct {
	mu sync.Mutex

	ID        string `json:"job_id"`
	ProjectID string `json:"project_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	sectionIDs []string
	errors     []string
}

// Progress tracks drafting progress.
type Progress struct {
	TotalSections   int      `json:"total_sections"`
	SectionsDrafted int      `json:"sections_drafted"`
	SectionsFailed  int      `json:"sections_failed"`
	Words           int      `json:"words"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job. An empty sectionIDs drafts every pending
// section of the project.
func NewJob(projectID string, sectionIDs []string) *Job {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	now := time.Now()
	return &Job{
		ID:         id.String(),
		ProjectID:  projectID,
		Status:     StatusQueued,
		Phase:      "queued",
		CreatedAt:  now,
		UpdatedAt:  now,
		sectionIDs: append([]string(nil), sectionIDs...),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Active returns the unfinished job of a project, if any.
func (s *JobStore) Active(projectID string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.ProjectID != projectID {
			continue
		}
		switch job.Snapshot().Status {
		case StatusQueued, StatusDrafting:
			return job
		}
	}
	return nil
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalSections records how many sections the job will draft.
func (j *Job) SetTotalSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalSections = n
	j.UpdatedAt = time.Now()
}

// SectionDrafted records one successfully drafted section.
func (j *Job) SectionDrafted(words int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsDrafted++
	j.Progress.Words += words
	j.UpdatedAt = time.Now()
}

// SectionFailed records one section that could not be drafted.
func (j *Job) SectionFailed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsFailed++
	j.UpdatedAt = time.Now()
}

// SectionIDs returns the explicitly requested sections.
func (j *Job) SectionIDs() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.sectionIDs...)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	ProjectID string    `json:"project_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:        j.ID,
		ProjectID: j.ProjectID,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress: Progress{
			TotalSections:   j.Progress.TotalSections,
			SectionsDrafted: j.Progress.SectionsDrafted,
			SectionsFailed:  j.Progress.SectionsFailed,
			Words:           j.Progress.Words,
			Errors:          errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
