// File: database/repository/spot/queries.go
package spotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartparking/models"
)

func (r *mongoSpotRepo) List(ctx context.Context, zone string) ([]models.Spot, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{}
	if zone != "" {
		filter["zone"] = zone
	}
	opts := options.Find().SetSort(bson.D{{Key: "zone", Value: 1}, {Key: "number", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing spots: %w", err)
	}
	defer cursor.Close(ctx)

	var spots []models.Spot
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *mongoSpotRepo) ListByStatus(ctx context.Context, status models.SpotStatus) ([]models.Spot, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, fmt.Errorf("error listing %s spots: %w", status, err)
	}
	defer cursor.Close(ctx)

	var spots []models.Spot
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, err
	}
	return spots, nil
}

// UpdateOccupancy writes only the occupancy fields. With a guard, the write
// applies only while status and occupiedUntil still match the guard, which
// makes it a compare-and-swap on the current hold.
func (r *mongoSpotRepo) UpdateOccupancy(ctx context.Context, id string, fields models.OccupancyFields, guard *models.OccupancyGuard) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"id": id}
	if guard != nil {
		filter["status"] = guard.Status
		filter["occupiedUntil"] = guard.OccupiedUntil
	}
	update := bson.M{
		"$set": bson.M{
			"status":        fields.Status,
			"occupiedBy":    fields.OccupiedBy,
			"occupiedUntil": fields.OccupiedUntil,
			"lastUpdated":   fields.LastUpdated,
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update occupancy of spot %s: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if guard == nil {
		return mongo.ErrNoDocuments
	}
	return r.missOrMismatch(ctx, id)
}

// PlaceHold marks the spot occupied by holder until the given time. It fails
// with ErrHoldConflict while another live hold exists or the spot is under
// maintenance; re-holding by the same holder extends the hold.
func (r *mongoSpotRepo) PlaceHold(ctx context.Context, id, holder string, until, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$ne": models.SpotMaintenance},
		"$or": bson.A{
			bson.M{"status": bson.M{"$ne": models.SpotOccupied}},
			bson.M{"occupiedUntil": bson.M{"$lte": now}},
			bson.M{"occupiedBy": holder},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":        models.SpotOccupied,
			"occupiedBy":    holder,
			"occupiedUntil": until,
			"lastUpdated":   now,
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to place hold on spot %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if err != nil {
			return fmt.Errorf("failed to check spot %s: %w", id, err)
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		return ErrHoldConflict
	}
	return nil
}

// ReleaseHold clears the hold if holder still owns it. It reports whether a
// hold was released.
func (r *mongoSpotRepo) ReleaseHold(ctx context.Context, id, holder string, now time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"id": id, "status": models.SpotOccupied, "occupiedBy": holder}
	update := bson.M{
		"$set": bson.M{
			"status":        models.SpotAvailable,
			"occupiedBy":    nil,
			"occupiedUntil": nil,
			"lastUpdated":   now,
		},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to release hold on spot %s: %w", id, err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *mongoSpotRepo) missOrMismatch(ctx context.Context, id string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to check spot %s: %w", id, err)
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	return ErrGuardMismatch
}
