// File: database/repository/reservation/queries.go
package reservationRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartparking/models"
)

func (r *mongoReservationRepo) ListForSpot(ctx context.Context, spotID string, statusIn []models.ReservationStatus) ([]models.Reservation, error) {
	filter := bson.M{"spotId": spotID}
	if len(statusIn) > 0 {
		filter["status"] = bson.M{"$in": statusIn}
	}
	return r.find(ctx, filter, bson.D{{Key: "startTime", Value: 1}})
}

func (r *mongoReservationRepo) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	return r.find(ctx, bson.M{"userId": userID}, bson.D{{Key: "createdAt", Value: -1}})
}

// List returns every reservation, or only those with the given status when
// status is non-empty.
func (r *mongoReservationRepo) List(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter, bson.D{{Key: "createdAt", Value: -1}})
}

// ExpireStale marks pending and approved reservations whose window has
// closed as expired.
func (r *mongoReservationRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"status":  bson.M{"$in": []models.ReservationStatus{models.ReservationPending, models.ReservationApproved}},
		"endTime": bson.M{"$lte": now},
	}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": models.ReservationExpired}})
	if err != nil {
		return 0, fmt.Errorf("failed to expire reservations: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *mongoReservationRepo) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Reservation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding reservations: %w", err)
	}
	return out, nil
}
