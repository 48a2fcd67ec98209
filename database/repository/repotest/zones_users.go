package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	userRepo "smartparking/database/repository/user"
	zoneRepo "smartparking/database/repository/zone"
	"smartparking/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Zones is an in-memory zoneRepo.ZoneRepository.
type Zones struct {
	mu    sync.Mutex
	items map[string]*models.Zone
}

func NewZones(zones ...models.Zone) *Zones {
	z := &Zones{items: map[string]*models.Zone{}}
	for _, zone := range zones {
		cp := zone
		z.items[zone.ID] = &cp
	}
	return z
}

var _ zoneRepo.ZoneRepository = (*Zones)(nil)

func (z *Zones) Create(_ context.Context, zone *models.Zone) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	zone.CreatedAt, zone.UpdatedAt = time.Now(), time.Now()
	cp := *zone
	z.items[zone.ID] = &cp
	return nil
}

func (z *Zones) GetByID(_ context.Context, id string) (*models.Zone, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	zone, ok := z.items[id]
	if !ok {
		return nil, notFound("zone", id)
	}
	cp := *zone
	return &cp, nil
}

func (z *Zones) List(_ context.Context) ([]models.Zone, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	out := make([]models.Zone, 0, len(z.items))
	for _, zone := range z.items {
		out = append(out, *zone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (z *Zones) Update(_ context.Context, id string, in models.ZoneInput) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	zone, ok := z.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	zone.Name, zone.Description, zone.Coordinates = in.Name, in.Description, in.Coordinates
	zone.TotalSpots, zone.AvailableSpots = in.TotalSpots, in.AvailableSpots
	zone.PriceMultiplier, zone.Features = in.PriceMultiplier, in.Features
	zone.UpdatedAt = time.Now()
	return nil
}

func (z *Zones) Delete(_ context.Context, id string) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, ok := z.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(z.items, id)
	return nil
}

// Users is an in-memory userRepo.UserRepository.
type Users struct {
	mu    sync.Mutex
	items map[string]*models.User
}

func NewUsers(users ...models.User) *Users {
	u := &Users{items: map[string]*models.User{}}
	for _, user := range users {
		cp := user
		u.items[user.ID] = &cp
	}
	return u
}

var _ userRepo.UserRepository = (*Users)(nil)

func (u *Users) GetByID(id string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.items[id]
	if !ok {
		return nil, notFound("user", id)
	}
	cp := *user
	return &cp, nil
}

func (u *Users) GetByEmail(email string) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.items {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, notFound("user", email)
}

func (u *Users) Create(user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.items {
		if existing.Email == user.Email {
			return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}}
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()
	cp := *user
	u.items[user.ID] = &cp
	return nil
}

func (u *Users) UpdateFCMToken(id, token string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.items[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.FCMToken = token
	return nil
}

func (u *Users) Count() (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return int64(len(u.items)), nil
}
