package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/domain/repositories"
)

func TestMemoryCandidateRepository(t *testing.T) {
	repo := NewMemoryCandidateRepository()
	ctx := context.Background()

	candidate, err := repo.GetByID(ctx, "cand-001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if candidate.VacancyID != "vac-001" {
		t.Errorf("vacancy id = %q", candidate.VacancyID)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := repo.UpdateLanguage(ctx, "cand-001", "ru-RU"); err != nil {
		t.Fatalf("UpdateLanguage: %v", err)
	}
	candidate, _ = repo.GetByID(ctx, "cand-001")
	if candidate.Language != "ru" {
		t.Errorf("language = %q, want normalized ru", candidate.Language)
	}

	outcome := &entities.InterviewOutcome{Completed: true, Score: 75, Decision: entities.DecisionMaybe}
	if err := repo.SaveInterviewResult(ctx, "cand-001", outcome); err != nil {
		t.Fatalf("SaveInterviewResult: %v", err)
	}
	candidate, _ = repo.GetByID(ctx, "cand-001")
	if candidate.Interview == nil || candidate.Interview.Score != 75 {
		t.Errorf("interview = %+v", candidate.Interview)
	}

	if err := repo.SaveInterviewResult(ctx, "missing", outcome); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCandidateRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryCandidateRepository()
	ctx := context.Background()

	first, _ := repo.GetByID(ctx, "cand-001")
	first.Name = "mutated"

	second, _ := repo.GetByID(ctx, "cand-001")
	if second.Name == "mutated" {
		t.Error("GetByID must return a copy, not the stored record")
	}
}

func TestMemoryVacancyRepository(t *testing.T) {
	repo := NewMemoryVacancyRepository()
	ctx := context.Background()

	vacancy, err := repo.GetByID(ctx, "vac-001")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if vacancy.Title != "Backend Engineer" {
		t.Errorf("title = %q", vacancy.Title)
	}

	scenario, err := repo.GetScenario(ctx, "vac-001")
	if err != nil {
		t.Fatalf("GetScenario: %v", err)
	}
	if scenario.TotalQuestions() != 3 {
		t.Errorf("TotalQuestions() = %d, want 3", scenario.TotalQuestions())
	}

	// A missing vacancy yields an empty scenario, not an error.
	scenario, err = repo.GetScenario(ctx, "missing")
	if err != nil || scenario != nil {
		t.Errorf("GetScenario(missing) = (%v, %v)", scenario, err)
	}
}
