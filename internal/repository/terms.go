package repository

import (
	"context"
	"fmt"

	"github.com/veritext/veritext/internal/index"
	"github.com/veritext/veritext/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	termsCollection     = "terms"
	postingsCollection  = "postings"
	indexDocsCollection = "index_documents"
)

// indexDocument records per-document index state: the tokenized
// length used as the TF denominator.
type indexDocument struct {
	ID         string `bson:"_id"`
	TokenCount int    `bson:"tokenCount"`
}

// TermIndex is the durable Term/Posting store backing the engine's
// inverted index. Term and posting updates are single-document atomic
// upserts, so readers never observe a partially written posting; the
// document-frequency bump happens only when a posting is created for
// a (term, document) pair that had none.
type TermIndex struct {
	mongoRepo *MongoRepository
}

func NewTermIndex(mongoRepo *MongoRepository) *TermIndex {
	return &TermIndex{
		mongoRepo: mongoRepo,
	}
}

// EnsureIndexes creates the lookup indexes the engine depends on:
// point lookups by term, by document, and by (term, document).
func (r *TermIndex) EnsureIndexes(ctx context.Context) error {
	postings := r.mongoRepo.GetCollection(postingsCollection)
	_, err := postings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "term", Value: 1}, {Key: "documentId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "documentId", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create posting indexes: %w", err)
	}
	return nil
}

// Add indexes (or re-indexes) a document. Terms the document no
// longer contains are retracted: their postings are removed and their
// document frequency decremented.
func (r *TermIndex) Add(ctx context.Context, docID string, tokens []string) error {
	counts := index.TermCounts(tokens)

	prev, err := r.DocumentPostings(ctx, docID)
	if err != nil {
		return err
	}

	for term := range prev {
		if _, still := counts[term]; still {
			continue
		}
		if err := r.retract(ctx, term, docID); err != nil {
			return err
		}
	}

	for term, freq := range counts {
		if err := r.upsertPosting(ctx, term, docID, freq, prev); err != nil {
			return err
		}
	}

	stats := indexDocument{ID: docID, TokenCount: len(tokens)}
	filter := bson.M{"_id": docID}
	update := bson.M{"$set": stats}
	opts := options.Update().SetUpsert(true)
	if _, err := r.mongoRepo.UpdateOne(ctx, indexDocsCollection, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert document stats: %w", err)
	}

	return nil
}

// upsertPosting writes the posting for (term, docID) and bumps the
// term's document frequency when the posting is new for this document.
func (r *TermIndex) upsertPosting(ctx context.Context, term, docID string, freq int, prev map[string]int) error {
	filter := bson.M{"term": term, "documentId": docID}
	update := bson.M{"$set": bson.M{"termFreq": freq}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.mongoRepo.UpdateOne(ctx, postingsCollection, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert posting: %w", err)
	}

	if _, had := prev[term]; had {
		// Re-index of a still-present term: frequency already counted.
		return nil
	}

	termFilter := bson.M{"_id": term}
	termUpdate := bson.M{"$inc": bson.M{"docFreq": 1}}
	if _, err := r.mongoRepo.UpdateOne(ctx, termsCollection, termFilter, termUpdate, opts); err != nil {
		return fmt.Errorf("failed to bump document frequency: %w", err)
	}

	return nil
}

// retract removes a stale posting and decrements the term's document
// frequency, deleting the term record once no document contains it.
func (r *TermIndex) retract(ctx context.Context, term, docID string) error {
	filter := bson.M{"term": term, "documentId": docID}
	if _, err := r.mongoRepo.DeleteMany(ctx, postingsCollection, filter); err != nil {
		return fmt.Errorf("failed to delete posting: %w", err)
	}

	termFilter := bson.M{"_id": term}
	termUpdate := bson.M{"$inc": bson.M{"docFreq": -1}}
	if _, err := r.mongoRepo.UpdateOne(ctx, termsCollection, termFilter, termUpdate); err != nil {
		return fmt.Errorf("failed to decrement document frequency: %w", err)
	}

	if _, err := r.mongoRepo.DeleteMany(ctx, termsCollection, bson.M{"_id": term, "docFreq": bson.M{"$lte": 0}}); err != nil {
		return fmt.Errorf("failed to prune empty term: %w", err)
	}

	return nil
}

func (r *TermIndex) DocumentFrequency(ctx context.Context, term string) (int, error) {
	filter := bson.M{"_id": term}

	var t models.Term
	err := r.mongoRepo.FindOne(ctx, termsCollection, filter).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find term: %w", err)
	}

	return t.DocFreq, nil
}

func (r *TermIndex) Postings(ctx context.Context, term string) ([]index.Posting, error) {
	filter := bson.M{"term": term}

	cursor, err := r.mongoRepo.FindMany(ctx, postingsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find postings: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.Posting
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode postings: %w", err)
	}

	postings := make([]index.Posting, 0, len(records))
	for _, rec := range records {
		postings = append(postings, index.Posting{
			DocumentID: rec.DocumentID,
			TermFreq:   rec.TermFreq,
		})
	}
	return postings, nil
}

func (r *TermIndex) DocumentPostings(ctx context.Context, docID string) (map[string]int, error) {
	filter := bson.M{"documentId": docID}

	cursor, err := r.mongoRepo.FindMany(ctx, postingsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find document postings: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.Posting
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode document postings: %w", err)
	}

	counts := make(map[string]int, len(records))
	for _, rec := range records {
		counts[rec.Term] = rec.TermFreq
	}
	return counts, nil
}

func (r *TermIndex) TokenCount(ctx context.Context, docID string) (int, error) {
	filter := bson.M{"_id": docID}

	var stats indexDocument
	err := r.mongoRepo.FindOne(ctx, indexDocsCollection, filter).Decode(&stats)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find document stats: %w", err)
	}

	return stats.TokenCount, nil
}

func (r *TermIndex) DocumentCount(ctx context.Context) (int, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, indexDocsCollection, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count indexed documents: %w", err)
	}

	return int(count), nil
}
