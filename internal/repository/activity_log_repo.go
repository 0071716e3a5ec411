package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yusufkecer/hospital-backend/internal/domain"
)

type ActivityLogRepository struct {
	collection *mongo.Collection
}

func NewActivityLogRepository(db *mongo.Database) *ActivityLogRepository {
	return &ActivityLogRepository{collection: db.Collection("activity_logs")}
}

func (r *ActivityLogRepository) Create(ctx context.Context, l *domain.ActivityLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	l.ID = ""
	result, err := r.collection.InsertOne(ctx, l)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		l.ID = oid.Hex()
	}
	return nil
}

func (r *ActivityLogRepository) List(ctx context.Context, f domain.ActivityFilter) ([]domain.ActivityLog, error) {
	filter := bson.M{}
	if f.AccountID > 0 {
		filter["account_id"] = f.AccountID
	}
	if f.Resource != "" {
		filter["resource"] = f.Resource
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(f.Limit)).
		SetSkip(int64(f.Offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []domain.ActivityLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode activity logs: %w", err)
	}
	return logs, nil
}
