package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the processing state of a pipeline run.
type RunStatus string

// Possible run status values
const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

// Common validation errors for Run
var (
	ErrRunIDEmpty       = errors.New("run ID cannot be empty")
	ErrRunClientIDEmpty = errors.New("run client ID cannot be empty")
	ErrRunContentEmpty  = errors.New("run SRS content cannot be empty")
	ErrRunProjectEmpty  = errors.New("run project name cannot be empty")
	ErrInvalidRunStatus = errors.New("invalid run status")
)

// Run is one execution of the generation pipeline over an SRS document.
type Run struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	SRSName     string    `json:"srs_name"`
	SRSContent  string    `json:"-"`
	ProjectName string    `json:"project_name"`
	Status      RunStatus `json:"status"`
	CurrentNode string    `json:"current_node,omitempty"`
	Logs        []string  `json:"logs"`
	Errors      []string  `json:"errors"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRun creates a pending Run for the given client and document.
func NewRun(clientID uuid.UUID, srsName, content, projectName string) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:          uuid.New(),
		ClientID:    clientID,
		SRSName:     srsName,
		SRSContent:  content,
		ProjectName: projectName,
		Status:      RunStatusPending,
		Logs:        []string{},
		Errors:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

// Validate checks if the Run has valid data.
func (r *Run) Validate() error {
	if r.ID == uuid.Nil {
		return ErrRunIDEmpty
	}
	if r.ClientID == uuid.Nil {
		return ErrRunClientIDEmpty
	}
	if r.SRSContent == "" {
		return ErrRunContentEmpty
	}
	if r.ProjectName == "" {
		return ErrRunProjectEmpty
	}
	if !r.Status.Valid() {
		return ErrInvalidRunStatus
	}
	return nil
}

// UpdateStatus updates the run's status and UpdatedAt timestamp.
func (r *Run) UpdateStatus(status RunStatus) error {
	if !status.Valid() {
		return ErrInvalidRunStatus
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Finished reports whether the run reached a terminal status.
func (r *Run) Finished() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// Valid reports whether s is a known run status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusPending, RunStatusProcessing, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}
