package repositories

import (
	"context"
	"errors"

	"github.com/voxhire/voxhire/server/domain/entities"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// CandidateRepository is the candidate-persistence collaborator consumed by
// the relay and the Finalizer.
type CandidateRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Candidate, error)
	// UpdateLanguage stores the normalized interview language for later
	// sessions. Best-effort at connection accept.
	UpdateLanguage(ctx context.Context, id, language string) error
	// SaveInterviewResult persists the completed interview outcome against
	// the candidate record.
	SaveInterviewResult(ctx context.Context, id string, outcome *entities.InterviewOutcome) error
}

// VacancyRepository supplies vacancy facts and the interview scenario.
type VacancyRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Vacancy, error)
	// GetScenario returns the ordered question list for a vacancy. An empty
	// scenario is not an error; callers fall back to the default scenario.
	GetScenario(ctx context.Context, vacancyID string) (entities.Scenario, error)
}
