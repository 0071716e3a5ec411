package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type AIInsightRepository struct {
	collection *mongo.Collection
}

func NewAIInsightRepository(db *mongo.Database) *AIInsightRepository {
	return &AIInsightRepository{collection: db.Collection("ai_insights")}
}

func (r *AIInsightRepository) Create(ctx context.Context, i *domain.AIInsight) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	i.ID = ""
	result, err := r.collection.InsertOne(ctx, i)
	if err != nil {
		return fmt.Errorf("failed to create insight: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		i.ID = oid.Hex()
	}
	return nil
}

// GetByID returns (nil, nil) when the id is malformed or unknown.
func (r *AIInsightRepository) GetByID(ctx context.Context, id string) (*domain.AIInsight, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var insight domain.AIInsight
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&insight)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return &insight, nil
}

func (r *AIInsightRepository) List(ctx context.Context, f domain.InsightFilter) ([]domain.AIInsight, error) {
	filter := bson.M{}
	if f.PatientID > 0 {
		filter["patient_id"] = f.PatientID
	}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(f.Limit)).
		SetSkip(int64(f.Offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer cursor.Close(ctx)

	var insights []domain.AIInsight
	if err := cursor.All(ctx, &insights); err != nil {
		return nil, fmt.Errorf("failed to decode insights: %w", err)
	}
	return insights, nil
}

func (r *AIInsightRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete insight: %w", err)
	}
	return result.DeletedCount > 0, nil
}
