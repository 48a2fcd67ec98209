package occupancy

import (
	"context"
	"sync"
	"time"

	"smartparking/models"
)

// memStore is an in-memory Store that honors occupancy guards.
type memStore struct {
	mu           sync.Mutex
	spots        map[string]*models.Spot
	reservations []models.Reservation

	getErr    error
	listErr   error
	updateErr map[string]error
	updates   int
}

func newMemStore(spots ...models.Spot) *memStore {
	s := &memStore{spots: map[string]*models.Spot{}, updateErr: map[string]error{}}
	for i := range spots {
		sp := spots[i]
		s.spots[sp.ID] = &sp
	}
	return s
}

func (s *memStore) addReservation(r models.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = append(s.reservations, r)
}

func (s *memStore) spot(id string) models.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.spots[id]
}

func (s *memStore) GetSpot(_ context.Context, spotID string) (*models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	sp, ok := s.spots[spotID]
	if !ok {
		return nil, ErrSpotNotFound
	}
	cp := *sp
	return &cp, nil
}

func (s *memStore) ListReservationsForSpot(_ context.Context, spotID string, statusIn []models.ReservationStatus) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Reservation
	for _, r := range s.reservations {
		if r.SpotID != spotID {
			continue
		}
		for _, st := range statusIn {
			if r.Status == st {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) ListOccupiedSpots(_ context.Context) ([]models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Spot
	for _, sp := range s.spots {
		if sp.Status == models.SpotOccupied {
			out = append(out, *sp)
		}
	}
	return out, nil
}

func (s *memStore) UpdateSpotFields(_ context.Context, spotID string, fields models.OccupancyFields, guard *models.OccupancyGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.updateErr[spotID]; err != nil {
		return err
	}
	sp, ok := s.spots[spotID]
	if !ok {
		return ErrSpotNotFound
	}
	if guard != nil {
		if sp.Status != guard.Status || !sameTime(sp.OccupiedUntil, guard.OccupiedUntil) {
			return ErrOccupancyChanged
		}
	}
	s.updates++
	sp.Status = fields.Status
	sp.OccupiedBy = fields.OccupiedBy
	sp.OccupiedUntil = fields.OccupiedUntil
	ts := fields.LastUpdated
	sp.LastUpdated = &ts
	return nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
