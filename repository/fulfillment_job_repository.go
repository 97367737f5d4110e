package repository

import (
	"context"
	"time"

	"github.com/yashrajoria/storefront-backend/database"
	"github.com/yashrajoria/storefront-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FulfillmentJobRepository struct {
	collection *mongo.Collection
}

func NewFulfillmentJobRepository(db *mongo.Database) *FulfillmentJobRepository {
	return &FulfillmentJobRepository{collection: db.Collection(database.FulfillmentCollection)}
}

// Enqueue inserts a job for the order unless one already exists.
func (r *FulfillmentJobRepository) Enqueue(ctx context.Context, job *models.FulfillmentJob) error {
	now := time.Now().UTC()
	if job.Status == "" {
		job.Status = models.JobPending
	}
	job.CreatedAt, job.UpdatedAt = now, now

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"orderId": job.OrderID},
		bson.M{"$setOnInsert": bson.M{
			"orderId":       job.OrderID,
			"status":        job.Status,
			"attempts":      job.Attempts,
			"lastError":     job.LastError,
			"nextAttemptAt": job.NextAttemptAt,
			"createdAt":     job.CreatedAt,
			"updatedAt":     job.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		job.ID = id
	}
	return nil
}

func (r *FulfillmentJobRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration) (*models.FulfillmentJob, error) {
	filter := bson.M{
		"status":        models.JobPending,
		"nextAttemptAt": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"nextAttemptAt": now.Add(lease),
		"updatedAt":     now,
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "nextAttemptAt", Value: 1}}).
		SetReturnDocument(options.After)

	var job models.FulfillmentJob
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&job); err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

func (r *FulfillmentJobRepository) MarkSucceeded(ctx context.Context, id primitive.ObjectID, attempts int) error {
	return r.set(ctx, id, bson.M{
		"status":    models.JobSucceeded,
		"attempts":  attempts,
		"lastError": "",
	})
}

func (r *FulfillmentJobRepository) MarkRetry(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time) error {
	return r.set(ctx, id, bson.M{
		"status":        models.JobPending,
		"attempts":      attempts,
		"lastError":     lastErr,
		"nextAttemptAt": next,
	})
}

func (r *FulfillmentJobRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string) error {
	return r.set(ctx, id, bson.M{
		"status":    models.JobFailed,
		"attempts":  attempts,
		"lastError": lastErr,
	})
}

// Reset makes a job due immediately, keeping its attempt history.
func (r *FulfillmentJobRepository) Reset(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	return r.set(ctx, id, bson.M{
		"status":        models.JobPending,
		"nextAttemptAt": now,
	})
}

func (r *FulfillmentJobRepository) set(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FulfillmentJobRepository) List(ctx context.Context, status string) ([]models.FulfillmentJob, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	jobs := []models.FulfillmentJob{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *FulfillmentJobRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}
