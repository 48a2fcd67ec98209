package spotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the parkingSpots collection.
func (r *mongoSpotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_number"),
		},
		// The sweep scans occupied spots by hold end.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "occupiedUntil", Value: 1}},
			Options: options.Index().SetName("status_occupied_until_idx"),
		},
		{
			Keys:    bson.D{{Key: "zone", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetName("zone_number_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create spot indexes: %w", err)
	}
	return nil
}
