package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	spotRepo "smartparking/database/repository/spot"
	"smartparking/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Spots is an in-memory spotRepo.SpotRepository.
type Spots struct {
	mu    sync.Mutex
	items map[string]*models.Spot
	// Err, when set, is returned by every call.
	Err error
}

func NewSpots(spots ...models.Spot) *Spots {
	s := &Spots{items: map[string]*models.Spot{}}
	for _, sp := range spots {
		cp := sp
		s.items[sp.ID] = &cp
	}
	return s
}

var _ spotRepo.SpotRepository = (*Spots)(nil)

func notFound(kind, id string) error {
	return fmt.Errorf("error fetching %s with id %s: %w", kind, id, mongo.ErrNoDocuments)
}

// Get returns a copy of the stored spot, for assertions.
func (s *Spots) Get(id string) models.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.items[id]
}

func (s *Spots) Create(_ context.Context, spot *models.Spot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if spot.ID == "" {
		spot.ID = uuid.New().String()
	}
	cp := *spot
	s.items[spot.ID] = &cp
	return nil
}

func (s *Spots) GetByID(_ context.Context, id string) (*models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	sp, ok := s.items[id]
	if !ok {
		return nil, notFound("spot", id)
	}
	cp := *sp
	return &cp, nil
}

func (s *Spots) GetByNumber(_ context.Context, number string) (*models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, sp := range s.items {
		if sp.Number == number {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, notFound("spot", number)
}

func (s *Spots) list(match func(*models.Spot) bool) ([]models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Spot
	for _, sp := range s.items {
		if match(sp) {
			out = append(out, *sp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		return out[i].Number < out[j].Number
	})
	return out, nil
}

func (s *Spots) List(_ context.Context, zone string) ([]models.Spot, error) {
	return s.list(func(sp *models.Spot) bool { return zone == "" || sp.Zone == zone })
}

func (s *Spots) ListByStatus(_ context.Context, status models.SpotStatus) ([]models.Spot, error) {
	return s.list(func(sp *models.Spot) bool { return sp.Status == status })
}

func (s *Spots) Update(_ context.Context, id string, in models.SpotInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	sp, ok := s.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	sp.Number, sp.Zone, sp.Type, sp.Size = in.Number, in.Zone, in.Type, in.Size
	sp.Accessible, sp.Coordinates, sp.PricePerHour = in.Accessible, in.Coordinates, in.PricePerHour
	sp.Features, sp.QRCode = in.Features, in.QRCode
	return nil
}

func (s *Spots) SetStatus(_ context.Context, id string, status models.SpotStatus, clearHold bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	sp, ok := s.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	sp.Status = status
	if clearHold {
		sp.OccupiedBy, sp.OccupiedUntil = nil, nil
	}
	now := time.Now()
	sp.LastUpdated = &now
	return nil
}

func (s *Spots) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.items, id)
	return nil
}

func (s *Spots) UpdateOccupancy(_ context.Context, id string, f models.OccupancyFields, guard *models.OccupancyGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	sp, ok := s.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if guard != nil && (sp.Status != guard.Status || !sameTime(sp.OccupiedUntil, guard.OccupiedUntil)) {
		return spotRepo.ErrGuardMismatch
	}
	sp.Status, sp.OccupiedBy, sp.OccupiedUntil = f.Status, f.OccupiedBy, f.OccupiedUntil
	ts := f.LastUpdated
	sp.LastUpdated = &ts
	return nil
}

func (s *Spots) PlaceHold(_ context.Context, id, holder string, until, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	sp, ok := s.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if sp.Status == models.SpotMaintenance {
		return spotRepo.ErrHoldConflict
	}
	free := sp.Status != models.SpotOccupied ||
		(sp.OccupiedUntil != nil && !sp.OccupiedUntil.After(now)) ||
		(sp.OccupiedBy != nil && *sp.OccupiedBy == holder)
	if !free {
		return spotRepo.ErrHoldConflict
	}
	h, u, n := holder, until, now
	sp.Status, sp.OccupiedBy, sp.OccupiedUntil, sp.LastUpdated = models.SpotOccupied, &h, &u, &n
	return nil
}

func (s *Spots) ReleaseHold(_ context.Context, id, holder string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	sp, ok := s.items[id]
	if !ok || sp.Status != models.SpotOccupied || sp.OccupiedBy == nil || *sp.OccupiedBy != holder {
		return false, nil
	}
	n := now
	sp.Status, sp.OccupiedBy, sp.OccupiedUntil, sp.LastUpdated = models.SpotAvailable, nil, nil, &n
	return true, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
