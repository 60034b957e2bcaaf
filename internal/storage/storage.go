package storage

import (
	"errors"
	"time"

	"ctp/internal/config"
	"ctp/internal/domain"
)

// ErrLaunchNotFound is returned when no saved launch configuration matches
var ErrLaunchNotFound = errors.New("launch configuration not found")

// Storage persists and loads test run results (e.g. for the faills viewer).
type Storage interface {
	Save(run Run) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after partial re-run updates).
	SaveOutput(output *domain.TestResultsOutput) error
}

// Run is everything a finished run hands to Storage.Save
type Run struct {
	ID       string
	LaunchID string
	Results  []domain.TestResult
	Cases    []domain.CaseResult
	Failures []domain.TestFailure
	Duration time.Duration
	Workers  int
}

// LaunchStore persists launch configurations, the sink for rerun requests
type LaunchStore interface {
	Save(cfg *domain.LaunchConfiguration) error
	Get(id string) (*domain.LaunchConfiguration, error)
	Latest() (*domain.LaunchConfiguration, error)
	List() ([]*domain.LaunchConfiguration, error)
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// JSONLaunchStore keeps launch configurations in a single JSON file
type JSONLaunchStore struct {
	cfg *config.Config
}

// NewJSONLaunchStore returns a LaunchStore backed by the config's launches path
func NewJSONLaunchStore(cfg *config.Config) *JSONLaunchStore {
	return &JSONLaunchStore{cfg: cfg}
}
