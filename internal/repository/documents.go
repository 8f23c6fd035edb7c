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

const documentsCollection = "documents"

type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

// Insert upserts a document by id so re-submitting the same document
// replaces its content instead of duplicating it.
func (r *DocumentsRepository) Insert(ctx context.Context, doc *models.Document) error {
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}

	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := r.mongoRepo.UpdateOne(ctx, documentsCollection, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

func (r *DocumentsRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	filter := bson.M{"_id": id}

	var doc models.Document
	err := r.mongoRepo.FindOne(ctx, documentsCollection, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

func (r *DocumentsRepository) List(ctx context.Context, limit int64) ([]*models.Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "uploadedAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentsRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, documentsCollection, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}
