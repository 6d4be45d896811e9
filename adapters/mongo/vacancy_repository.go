package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/domain/repositories"
)

// VacancyRepository is the MongoDB-backed scenario/vacancy collaborator.
type VacancyRepository struct {
	collection *mongo.Collection
}

// NewVacancyRepository creates a new MongoDB vacancy repository
func NewVacancyRepository(db *mongo.Database) repositories.VacancyRepository {
	return &VacancyRepository{
		collection: db.Collection("vacancies"),
	}
}

// GetByID implements repositories.VacancyRepository
func (r *VacancyRepository) GetByID(ctx context.Context, id string) (*entities.Vacancy, error) {
	if id == "" {
		return nil, errors.New("vacancy ID cannot be empty")
	}

	var vacancy entities.Vacancy
	err := r.collection.FindOne(ctx, idFilter(id)).Decode(&vacancy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vacancy %s: %w", id, err)
	}
	if vacancy.ID == "" {
		vacancy.ID = id
	}

	return &vacancy, nil
}

// GetScenario implements repositories.VacancyRepository
func (r *VacancyRepository) GetScenario(ctx context.Context, vacancyID string) (entities.Scenario, error) {
	vacancy, err := r.GetByID(ctx, vacancyID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil // no vacancy means no scenario, not an error
		}
		return nil, err
	}
	return vacancy.Scenario, nil
}
