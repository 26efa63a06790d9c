package recordsRepo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *mongoRecordRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	recordIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "moveDate", Value: 1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "callSid", Value: 1}}},
	}
	if _, err := r.records.Indexes().CreateMany(ctx, recordIndexes); err != nil {
		return fmt.Errorf("failed to create record indexes: %w", err)
	}

	customerIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.customers.Indexes().CreateMany(ctx, customerIndexes); err != nil {
		return fmt.Errorf("failed to create customer indexes: %w", err)
	}

	callIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "callSid", Value: 1}}},
	}
	if _, err := r.calls.Indexes().CreateMany(ctx, callIndexes); err != nil {
		return fmt.Errorf("failed to create call log indexes: %w", err)
	}
	return nil
}
