package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusEnriching  JobStatus = "enriching"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusPartial    JobStatus = "partial"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single notice ingestion.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	NoticeID string `json:"notice_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
	warnings []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalNodes    int      `json:"total_nodes"`
	NodesEnriched int      `json:"nodes_enriched"`
	NodesStored   int      `json:"nodes_stored"`
	Warnings      []string `json:"warnings"`
	Errors        []string `json:"errors"`
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
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

// SetNoticeID records the notice identity discovered during parsing.
func (j *Job) SetNoticeID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.NoticeID = id
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

// AddWarning records a parse warning.
func (j *Job) AddWarning(w string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, w)
	j.Progress.Warnings = j.warnings
	j.UpdatedAt = time.Now()
}

// IncrNodesEnriched atomically increments the enriched-node count.
func (j *Job) IncrNodesEnriched() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.NodesEnriched++
	j.UpdatedAt = time.Now()
}

// IncrNodesStored atomically increments the stored-node count.
func (j *Job) IncrNodesStored() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.NodesStored++
	j.UpdatedAt = time.Now()
}

// SetTotalNodes records the node count from the parsed document.
func (j *Job) SetTotalNodes(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalNodes = n
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	NoticeID  string    `json:"notice_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	warns := j.Progress.Warnings
	if warns == nil {
		warns = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		NoticeID:  j.NoticeID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Progress: Progress{
			TotalNodes:    j.Progress.TotalNodes,
			NodesEnriched: j.Progress.NodesEnriched,
			NodesStored:   j.Progress.NodesStored,
			Warnings:      warns,
			Errors:        errs,
		},
	}
}
