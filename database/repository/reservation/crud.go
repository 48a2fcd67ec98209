// File: database/repository/reservation/crud.go
package reservationRepo

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

func (r *mongoReservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var res models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res); err != nil {
		return nil, fmt.Errorf("error fetching reservation %s: %w", id, err)
	}
	return &res, nil
}

// Transition moves a reservation to a new status only while it is still in
// one of the from statuses. Extra fields in set are written alongside.
func (r *mongoReservationRepo) Transition(ctx context.Context, id string, from []models.ReservationStatus, to models.ReservationStatus, set map[string]any) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	fields := bson.M{"status": to}
	for k, v := range set {
		fields[k] = v
	}
	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Reservation
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to move reservation %s to %s: %w", id, to, err)
	}
	n, cerr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if cerr != nil {
		return nil, fmt.Errorf("failed to check reservation %s: %w", id, cerr)
	}
	if n == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return nil, ErrStaleStatus
}

// MarkPaid records a successful payment. It is idempotent for the same ref.
func (r *mongoReservationRepo) MarkPaid(ctx context.Context, id, paymentRef string) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"paymentStatus": models.PaymentPaid, "paymentRef": paymentRef}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Reservation
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("failed to mark reservation %s paid: %w", id, err)
	}
	return &updated, nil
}
