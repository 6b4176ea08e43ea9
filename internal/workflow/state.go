package workflow

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
)

// Test case kinds used as keys of State.TestCases.
const (
	TestKindRoutes = "routes"
	TestKindModels = "models"
	TestKindAuth   = "auth"
)

// State is the data passed between nodes. Nodes run one at a time, so State
// is not safe for concurrent use.
type State struct {
	RunID uuid.UUID
	// SRSPath is the original document name, for display only.
	SRSPath string
	// SRSContent is the document text.
	SRSContent string
	// SRSFile is a local document the SRS parser loads instead of
	// SRSContent. Only local callers set it; text from API clients is never
	// read as a path.
	SRSFile      string
	Requirements *domain.Requirements
	// GeneratedCode maps project-relative paths to file contents.
	GeneratedCode map[string]string
	// TestCases maps a test kind to the project-relative test files.
	TestCases map[string][]string
	Errors    []string
	Logs      []string
	// Visited lists the nodes run so far, in order.
	Visited []string
}

// NewState creates a State for the given document.
func NewState(runID uuid.UUID, srsPath, content string) *State {
	return &State{
		RunID:         runID,
		SRSPath:       srsPath,
		SRSContent:    content,
		GeneratedCode: make(map[string]string),
		TestCases:     make(map[string][]string),
		Errors:        []string{},
		Logs:          []string{},
		Visited:       []string{},
	}
}

// NewFileState creates a State whose document is loaded from a local file
// by the SRS parser.
func NewFileState(runID uuid.UUID, file string) *State {
	s := NewState(runID, filepath.Base(file), "")
	s.SRSFile = file
	return s
}

// Logf appends a formatted log line.
func (s *State) Logf(format string, args ...any) {
	s.Logs = append(s.Logs, fmt.Sprintf(format, args...))
}

// Errorf appends a formatted error line.
func (s *State) Errorf(format string, args ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, args...))
}

// LastError returns the most recent error line, or "" when there is none.
func (s *State) LastError() string {
	if len(s.Errors) == 0 {
		return ""
	}
	return s.Errors[len(s.Errors)-1]
}

// Failed reports whether any error was recorded.
func (s *State) Failed() bool {
	return len(s.Errors) > 0
}

// AddFile records generated content under a project-relative path.
func (s *State) AddFile(path, content string) {
	if s.GeneratedCode == nil {
		s.GeneratedCode = make(map[string]string)
	}
	s.GeneratedCode[path] = content
}

// AddTestCase records a generated test file under kind.
func (s *State) AddTestCase(kind, path string) {
	if s.TestCases == nil {
		s.TestCases = make(map[string][]string)
	}
	s.TestCases[kind] = append(s.TestCases[kind], path)
}
