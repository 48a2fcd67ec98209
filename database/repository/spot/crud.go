// File: database/repository/spot/crud.go
package spotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"smartparking/models"
)

func (r *mongoSpotRepo) Create(ctx context.Context, spot *models.Spot) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if spot.ID == "" {
		spot.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, spot); err != nil {
		return fmt.Errorf("failed to insert spot %s: %w", spot.Number, err)
	}
	return nil
}

func (r *mongoSpotRepo) GetByID(ctx context.Context, id string) (*models.Spot, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var spot models.Spot
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&spot); err != nil {
		return nil, fmt.Errorf("error fetching spot with id %s: %w", id, err)
	}
	return &spot, nil
}

func (r *mongoSpotRepo) GetByNumber(ctx context.Context, number string) (*models.Spot, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var spot models.Spot
	if err := r.coll.FindOne(ctx, bson.M{"number": number}).Decode(&spot); err != nil {
		return nil, fmt.Errorf("error fetching spot with number %s: %w", number, err)
	}
	return &spot, nil
}

func (r *mongoSpotRepo) Update(ctx context.Context, id string, input models.SpotInput) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Occupancy fields are written only through UpdateOccupancy and the hold methods.
	update := bson.M{
		"$set": bson.M{
			"number":       input.Number,
			"zone":         input.Zone,
			"type":         input.Type,
			"size":         input.Size,
			"accessible":   input.Accessible,
			"coordinates":  input.Coordinates,
			"pricePerHour": input.PricePerHour,
			"features":     input.Features,
			"qrCode":       input.QRCode,
		},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update spot %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSpotRepo) SetStatus(ctx context.Context, id string, status models.SpotStatus, clearHold bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{"status": status, "lastUpdated": time.Now()}
	if clearHold {
		set["occupiedBy"] = nil
		set["occupiedUntil"] = nil
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set status of spot %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoSpotRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
