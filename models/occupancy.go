package models

import "time"

// ConflictReason explains why a spot is not available for a window.
type ConflictReason string

const (
	ConflictNone        ConflictReason = ""
	ConflictOccupied    ConflictReason = "occupied"
	ConflictReservation ConflictReason = "reservation_conflict"
	ConflictMaintenance ConflictReason = "maintenance"
)

// AvailabilityResult is the detailed answer of an availability check.
type AvailabilityResult struct {
	SpotID                   string         `json:"spotId"`
	Available                bool           `json:"available"`
	Reason                   ConflictReason `json:"reason,omitempty"`
	ConflictingReservationID string         `json:"conflictingReservationId,omitempty"`
	HeldUntil                *time.Time     `json:"heldUntil,omitempty"`
}

// SweepReport summarizes one expiry sweep.
type SweepReport struct {
	StartedAt time.Time `json:"startedAt"`
	Scanned   int       `json:"scanned"`
	Released  []Spot    `json:"released"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Err       error     `json:"-"`
}
