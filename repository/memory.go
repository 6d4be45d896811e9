package repository

import (
	"context"
	"sync"
	"time"

	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/domain/repositories"
)

// MemoryCandidateRepository is an in-memory CandidateRepository for
// testing/development.
type MemoryCandidateRepository struct {
	mu         sync.RWMutex
	candidates map[string]*entities.Candidate
}

// NewMemoryCandidateRepository creates an in-memory candidate repository with
// pre-registered test candidates.
func NewMemoryCandidateRepository() *MemoryCandidateRepository {
	repo := &MemoryCandidateRepository{
		candidates: make(map[string]*entities.Candidate),
	}

	// Pre-register some test candidates
	repo.Put(&entities.Candidate{
		ID:              "cand-001",
		Name:            "Test Candidate",
		Language:        "en",
		VacancyID:       "vac-001",
		Skills:          []string{"go", "postgresql", "kubernetes"},
		ExperienceYears: 4,
		CreatedAt:       time.Now(),
	})

	return repo
}

// Put inserts or replaces a candidate record.
func (m *MemoryCandidateRepository) Put(candidate *entities.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates[candidate.ID] = candidate
}

// GetByID implements repositories.CandidateRepository
func (m *MemoryCandidateRepository) GetByID(ctx context.Context, id string) (*entities.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	candidate, ok := m.candidates[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *candidate
	return &copied, nil
}

// UpdateLanguage implements repositories.CandidateRepository
func (m *MemoryCandidateRepository) UpdateLanguage(ctx context.Context, id, language string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	candidate, ok := m.candidates[id]
	if !ok {
		return repositories.ErrNotFound
	}
	candidate.Language = entities.NormalizeLanguage(language)
	return nil
}

// SaveInterviewResult implements repositories.CandidateRepository
func (m *MemoryCandidateRepository) SaveInterviewResult(ctx context.Context, id string, outcome *entities.InterviewOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	candidate, ok := m.candidates[id]
	if !ok {
		return repositories.ErrNotFound
	}
	candidate.Interview = outcome
	return nil
}

// MemoryVacancyRepository is an in-memory VacancyRepository for
// testing/development.
type MemoryVacancyRepository struct {
	mu        sync.RWMutex
	vacancies map[string]*entities.Vacancy
}

// NewMemoryVacancyRepository creates an in-memory vacancy repository with a
// pre-registered test vacancy.
func NewMemoryVacancyRepository() *MemoryVacancyRepository {
	repo := &MemoryVacancyRepository{
		vacancies: make(map[string]*entities.Vacancy),
	}

	repo.Put(&entities.Vacancy{
		ID:              "vac-001",
		Title:           "Backend Engineer",
		MustHave:        []string{"go", "sql", "distributed systems"},
		ExperienceYears: 3,
		Language:        "en",
		Scenario: entities.Scenario{
			{Competence: "intro", Question: "Please tell me about yourself"},
			{Competence: "experience", Question: "Walk me through your most recent role"},
			{Competence: "stack", Question: "How do you design a service for high write throughput?"},
			{Competence: "cases", Question: "Describe a production incident you resolved"},
			{Competence: "final", Question: "When could you start?"},
		},
		CreatedAt: time.Now(),
	})

	return repo
}

// Put inserts or replaces a vacancy record.
func (m *MemoryVacancyRepository) Put(vacancy *entities.Vacancy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vacancies[vacancy.ID] = vacancy
}

// GetByID implements repositories.VacancyRepository
func (m *MemoryVacancyRepository) GetByID(ctx context.Context, id string) (*entities.Vacancy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vacancy, ok := m.vacancies[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *vacancy
	return &copied, nil
}

// GetScenario implements repositories.VacancyRepository
func (m *MemoryVacancyRepository) GetScenario(ctx context.Context, vacancyID string) (entities.Scenario, error) {
	vacancy, err := m.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, nil
	}
	return vacancy.Scenario, nil
}
