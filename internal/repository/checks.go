package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/veritext/veritext/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const checksCollection = "plagiarism_checks"

type ChecksRepository struct {
	mongoRepo *MongoRepository
}

func NewChecksRepository(mongoRepo *MongoRepository) *ChecksRepository {
	return &ChecksRepository{
		mongoRepo: mongoRepo,
	}
}

// Insert stores a finished check. Checks are immutable; a rerun of the
// same document produces a new check with its own id.
func (r *ChecksRepository) Insert(ctx context.Context, check *models.PlagiarismCheck) error {
	if check.CheckedAt.IsZero() {
		check.CheckedAt = time.Now()
	}

	if err := r.mongoRepo.InsertOne(ctx, checksCollection, check); err != nil {
		return fmt.Errorf("failed to insert check: %w", err)
	}

	return nil
}

func (r *ChecksRepository) Get(ctx context.Context, id string) (*models.PlagiarismCheck, error) {
	filter := bson.M{"_id": id}

	var check models.PlagiarismCheck
	err := r.mongoRepo.FindOne(ctx, checksCollection, filter).Decode(&check)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find check: %w", err)
	}

	return &check, nil
}

func (r *ChecksRepository) ListByDocumentID(ctx context.Context, documentID string) ([]*models.PlagiarismCheck, error) {
	filter := bson.M{"documentId": documentID}
	return r.list(ctx, filter)
}

func (r *ChecksRepository) List(ctx context.Context) ([]*models.PlagiarismCheck, error) {
	return r.list(ctx, bson.M{})
}

func (r *ChecksRepository) list(ctx context.Context, filter bson.M) ([]*models.PlagiarismCheck, error) {
	opts := options.Find().SetSort(bson.D{{Key: "checkedAt", Value: -1}})

	cursor, err := r.mongoRepo.FindMany(ctx, checksCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find checks: %w", err)
	}
	defer cursor.Close(ctx)

	var checks []*models.PlagiarismCheck
	if err := cursor.All(ctx, &checks); err != nil {
		return nil, fmt.Errorf("failed to decode checks: %w", err)
	}

	return checks, nil
}

func (r *ChecksRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, checksCollection, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count checks: %w", err)
	}

	return count, nil
}
