// File: database/repository/zone/crud.go
package zoneRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartparking/models"
)

func (r *mongoZoneRepo) Create(ctx context.Context, zone *models.Zone) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	now := time.Now()
	zone.CreatedAt = now
	zone.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, zone); err != nil {
		return fmt.Errorf("failed to insert zone %s: %w", zone.Name, err)
	}
	return nil
}

func (r *mongoZoneRepo) GetByID(ctx context.Context, id string) (*models.Zone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var zone models.Zone
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&zone); err != nil {
		return nil, fmt.Errorf("error fetching zone %s: %w", id, err)
	}
	return &zone, nil
}

func (r *mongoZoneRepo) List(ctx context.Context) ([]models.Zone, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error listing zones: %w", err)
	}
	defer cursor.Close(ctx)

	var zones []models.Zone
	if err := cursor.All(ctx, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *mongoZoneRepo) Update(ctx context.Context, id string, input models.ZoneInput) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":            input.Name,
		"description":     input.Description,
		"coordinates":     input.Coordinates,
		"totalSpots":      input.TotalSpots,
		"availableSpots":  input.AvailableSpots,
		"priceMultiplier": input.PriceMultiplier,
		"features":        input.Features,
		"updatedAt":       time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update zone %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoZoneRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete zone %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
