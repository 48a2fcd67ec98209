package models

import "time"

type SpotStatus string

const (
	SpotAvailable   SpotStatus = "available"
	SpotReserved    SpotStatus = "reserved"
	SpotOccupied    SpotStatus = "occupied"
	SpotMaintenance SpotStatus = "maintenance"
)

// Valid reports whether s is one of the known spot statuses.
func (s SpotStatus) Valid() bool {
	switch s {
	case SpotAvailable, SpotReserved, SpotOccupied, SpotMaintenance:
		return true
	}
	return false
}

type SpotCoordinates struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

// Spot is a single physical parking space.
type Spot struct {
	ID           string          `bson:"id" json:"id"`
	Number       string          `bson:"number" json:"number"` // A-01, B-15, etc.
	Zone         string          `bson:"zone" json:"zone"`
	Type         string          `bson:"type,omitempty" json:"type,omitempty"` // covered | outdoor
	Size         string          `bson:"size,omitempty" json:"size,omitempty"` // standard | large | compact
	Accessible   bool            `bson:"accessible" json:"accessible"`
	Coordinates  SpotCoordinates `bson:"coordinates" json:"coordinates"`
	Status       SpotStatus      `bson:"status" json:"status"`
	PricePerHour float64         `bson:"pricePerHour" json:"pricePerHour"`
	Features     []string        `bson:"features,omitempty" json:"features,omitempty"`
	QRCode       string          `bson:"qrCode,omitempty" json:"qrCode,omitempty"`

	// Occupancy fields. OccupiedUntil is only meaningful while Status is occupied.
	OccupiedBy    *string    `bson:"occupiedBy" json:"occupiedBy,omitempty"`
	OccupiedUntil *time.Time `bson:"occupiedUntil" json:"occupiedUntil,omitempty"`
	LastUpdated   *time.Time `bson:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
}

// HeldAt reports whether the spot carries a live occupancy hold at t.
func (s *Spot) HeldAt(t time.Time) bool {
	return s.Status == SpotOccupied && s.OccupiedUntil != nil && s.OccupiedUntil.After(t)
}

// OccupancyFields is the narrow set of spot fields the occupancy engine writes.
// Nil pointers are stored as null.
type OccupancyFields struct {
	Status        SpotStatus
	OccupiedBy    *string
	OccupiedUntil *time.Time
	LastUpdated   time.Time
}

// OccupancyGuard is a precondition on an occupancy update: the write only
// applies while the stored status and occupiedUntil still match.
type OccupancyGuard struct {
	Status        SpotStatus
	OccupiedUntil *time.Time
}

// SpotInput carries the operator-editable spot fields.
type SpotInput struct {
	Number       string          `json:"number" binding:"required"`
	Zone         string          `json:"zone" binding:"required"`
	Type         string          `json:"type"`
	Size         string          `json:"size"`
	Accessible   bool            `json:"accessible"`
	Coordinates  SpotCoordinates `json:"coordinates"`
	PricePerHour float64         `json:"pricePerHour"`
	Features     []string        `json:"features"`
	QRCode       string          `json:"qrCode"`
}
