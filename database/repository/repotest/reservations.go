package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	reservationRepo "smartparking/database/repository/reservation"
	"smartparking/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Reservations is an in-memory reservationRepo.ReservationRepository.
type Reservations struct {
	mu    sync.Mutex
	items map[string]*models.Reservation
	Err   error
}

func NewReservations(rs ...models.Reservation) *Reservations {
	r := &Reservations{items: map[string]*models.Reservation{}}
	for _, res := range rs {
		cp := res
		r.items[res.ID] = &cp
	}
	return r
}

var _ reservationRepo.ReservationRepository = (*Reservations)(nil)

// Get returns a copy of the stored reservation, for assertions.
func (r *Reservations) Get(id string) models.Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.items[id]
}

func (r *Reservations) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Reservations) Create(_ context.Context, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	cp := *res
	r.items[res.ID] = &cp
	return nil
}

func (r *Reservations) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	res, ok := r.items[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	cp := *res
	return &cp, nil
}

func (r *Reservations) filter(match func(*models.Reservation) bool, less func(a, b models.Reservation) bool) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []models.Reservation
	for _, res := range r.items {
		if match(res) {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func byStart(a, b models.Reservation) bool   { return a.StartTime.Before(b.StartTime) }
func newestFirst(a, b models.Reservation) bool { return a.CreatedAt.After(b.CreatedAt) }

func hasStatus(s models.ReservationStatus, in []models.ReservationStatus) bool {
	for _, x := range in {
		if x == s {
			return true
		}
	}
	return false
}

func (r *Reservations) ListForSpot(_ context.Context, spotID string, statusIn []models.ReservationStatus) ([]models.Reservation, error) {
	return r.filter(func(res *models.Reservation) bool {
		return res.SpotID == spotID && (len(statusIn) == 0 || hasStatus(res.Status, statusIn))
	}, byStart)
}

func (r *Reservations) ListByUser(_ context.Context, userID string) ([]models.Reservation, error) {
	return r.filter(func(res *models.Reservation) bool { return res.UserID == userID }, newestFirst)
}

func (r *Reservations) List(_ context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	return r.filter(func(res *models.Reservation) bool { return status == "" || res.Status == status }, newestFirst)
}

func (r *Reservations) Transition(_ context.Context, id string, from []models.ReservationStatus, to models.ReservationStatus, set map[string]any) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	res, ok := r.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if !hasStatus(res.Status, from) {
		return nil, reservationRepo.ErrStaleStatus
	}
	res.Status = to
	for k, v := range set {
		applyField(res, k, v)
	}
	cp := *res
	return &cp, nil
}

// applyField mirrors the bson field names the services set on transitions.
func applyField(res *models.Reservation, key string, v any) {
	switch key {
	case "approvedBy":
		res.ApprovedBy = v.(string)
	case "approvedAt":
		t := v.(time.Time)
		res.ApprovedAt = &t
	case "checkInTime":
		t := v.(time.Time)
		res.CheckInTime = &t
	case "checkOutTime":
		t := v.(time.Time)
		res.CheckOutTime = &t
	case "notes":
		res.Notes = v.(string)
	}
}

func (r *Reservations) MarkPaid(_ context.Context, id, paymentRef string) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	res, ok := r.items[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	res.PaymentStatus = models.PaymentPaid
	res.PaymentRef = paymentRef
	cp := *res
	return &cp, nil
}

func (r *Reservations) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var n int64
	for _, res := range r.items {
		if (res.Status == models.ReservationPending || res.Status == models.ReservationApproved) && !res.EndTime.After(now) {
			res.Status = models.ReservationExpired
			n++
		}
	}
	return n, nil
}
