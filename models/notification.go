package models

// ReleasePayload is the asynq payload scheduled for the end of an occupancy hold.
type ReleasePayload struct {
	SpotID string `json:"spotId"`
	Until  string `json:"until"`
}

// ParkingEvent is published on the event bus for dashboards and audit.
type ParkingEvent struct {
	Type          string `json:"type"`
	SpotID        string `json:"spotId,omitempty"`
	SpotNumber    string `json:"spotNumber,omitempty"`
	ReservationID string `json:"reservationId,omitempty"`
	UserID        string `json:"userId,omitempty"`
	Status        string `json:"status,omitempty"`
	OccurredAt    string `json:"occurredAt"`
}
