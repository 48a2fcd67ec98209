// File: database/repository/zone/interface.go
package zoneRepo

import (
	"context"
	"time"

	"smartparking/database"
	"smartparking/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type ZoneRepository interface {
	Create(ctx context.Context, zone *models.Zone) error
	GetByID(ctx context.Context, id string) (*models.Zone, error)
	List(ctx context.Context) ([]models.Zone, error)
	Update(ctx context.Context, id string, input models.ZoneInput) error
	Delete(ctx context.Context, id string) error
}

type mongoZoneRepo struct {
	coll *mongo.Collection
}

const queryTimeout = 5 * time.Second

func NewMongoZoneRepo() ZoneRepository {
	repo := &mongoZoneRepo{coll: database.DB().Collection("parkingZones")}
	if err := repo.EnsureIndexes(); err != nil {
		database.LogIndexError("parkingZones", err)
	}
	return repo
}
