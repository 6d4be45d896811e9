package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voxhire/voxhire/server/domain/entities"
	"github.com/voxhire/voxhire/server/domain/repositories"
)

// CandidateRepository is the MongoDB-backed candidate-persistence
// collaborator.
type CandidateRepository struct {
	collection *mongo.Collection
}

// NewCandidateRepository creates a new MongoDB candidate repository
func NewCandidateRepository(db *mongo.Database) repositories.CandidateRepository {
	return &CandidateRepository{
		collection: db.Collection("candidates"),
	}
}

// GetByID implements repositories.CandidateRepository
func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*entities.Candidate, error) {
	if id == "" {
		return nil, errors.New("candidate ID cannot be empty")
	}

	var candidate entities.Candidate
	err := r.collection.FindOne(ctx, idFilter(id)).Decode(&candidate)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}
	if candidate.ID == "" {
		candidate.ID = id
	}

	return &candidate, nil
}

// UpdateLanguage implements repositories.CandidateRepository
func (r *CandidateRepository) UpdateLanguage(ctx context.Context, id, language string) error {
	if id == "" {
		return errors.New("candidate ID cannot be empty")
	}

	update := bson.M{"$set": bson.M{"language": entities.NormalizeLanguage(language)}}
	result, err := r.collection.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("failed to update language for candidate %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// SaveInterviewResult implements repositories.CandidateRepository
func (r *CandidateRepository) SaveInterviewResult(ctx context.Context, id string, outcome *entities.InterviewOutcome) error {
	if id == "" {
		return errors.New("candidate ID cannot be empty")
	}
	if outcome == nil {
		return errors.New("outcome cannot be nil")
	}

	update := bson.M{"$set": bson.M{"interview": outcome}}
	result, err := r.collection.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("failed to save interview result for candidate %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Candidate and vacancy ids are stored as plain strings.
func idFilter(id string) bson.M {
	return bson.M{"_id": id}
}
