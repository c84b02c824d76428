package store

import "time"

// StageState enumerates a stage's lifecycle.
type StageState string

const (
	StagePending   StageState = "pending"
	StageActive    StageState = "active"
	StageCompleted StageState = "completed"
	StageFailed    StageState = "failed"
)

// Stage keys used by the indexing pipeline.
const (
	StageSummaries     = "add_commits_and_summaries"
	StageAmplification = "commit_amplification"
	StageEmbeddings    = "generate_commit_embeddings"
)

// StageStatus holds the persisted state of one pipeline stage.
type StageStatus struct {
	Name     string     `json:"name"`
	Status   StageState `json:"status"`
	Progress float64    `json:"progress"`
	Error    string     `json:"error,omitempty"`
}

// ProjectStatus is the persisted status.json payload polled by clients.
type ProjectStatus struct {
	Stages          map[string]StageStatus `json:"stages"`
	OverallProgress float64                `json:"overall_progress"`
	OverallStatus   StageState             `json:"overall_status"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewProjectStatus initializes a pending status for the given stage keys.
func NewProjectStatus(stageKeys []string) *ProjectStatus {
	stages := make(map[string]StageStatus, len(stageKeys))
	for _, key := range stageKeys {
		stages[key] = StageStatus{Name: key, Status: StagePending}
	}
	return &ProjectStatus{
		Stages:        stages,
		OverallStatus: StagePending,
	}
}

// SetStage updates one stage and recomputes the overall progress as the
// mean of stage progresses, clamped to [0,100].
func (p *ProjectStatus) SetStage(key string, state StageState, progress float64, errMsg string) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	p.Stages[key] = StageStatus{
		Name:     key,
		Status:   state,
		Progress: progress,
		Error:    errMsg,
	}

	var sum float64
	failed := false
	allCompleted := len(p.Stages) > 0
	for _, st := range p.Stages {
		sum += st.Progress
		if st.Status == StageFailed {
			failed = true
		}
		if st.Status != StageCompleted {
			allCompleted = false
		}
	}
	p.OverallProgress = sum / float64(len(p.Stages))

	switch {
	case failed:
		p.OverallStatus = StageFailed
	case allCompleted:
		p.OverallStatus = StageCompleted
	default:
		p.OverallStatus = StageActive
	}
}

// ReadStatus loads the persisted project status, or nil if absent.
func (s *Store) ReadStatus(project string) (*ProjectStatus, error) {
	var status *ProjectStatus
	if err := s.readJSON(project, statusFile, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// WriteStatus persists the project status, stamping UpdatedAt.
func (s *Store) WriteStatus(project string, status *ProjectStatus) error {
	status.UpdatedAt = time.Now().UTC()
	return s.writeJSON(project, statusFile, status)
}
