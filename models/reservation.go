package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

// BindingStatuses are the reservation statuses that count against availability.
var BindingStatuses = []ReservationStatus{ReservationApproved, ReservationActive}

// IsBinding reports whether the status blocks the reserved interval.
func (s ReservationStatus) IsBinding() bool {
	return s == ReservationApproved || s == ReservationActive
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationApproved, ReservationActive,
		ReservationCompleted, ReservationCancelled, ReservationExpired:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Reservation is a user's request for a spot over [StartTime, EndTime).
type Reservation struct {
	ID            string            `bson:"id" json:"id"`
	UserID        string            `bson:"userId" json:"userId"`
	UserName      string            `bson:"userName,omitempty" json:"userName,omitempty"`
	UserPhone     string            `bson:"userPhone,omitempty" json:"userPhone,omitempty"`
	SpotID        string            `bson:"spotId" json:"spotId"`
	SpotNumber    string            `bson:"spotNumber" json:"spotNumber"`
	StartTime     time.Time         `bson:"startTime" json:"startTime"`
	EndTime       time.Time         `bson:"endTime" json:"endTime"`
	Duration      float64           `bson:"duration" json:"duration"` // hours
	TotalCost     float64           `bson:"totalCost" json:"totalCost"`
	Status        ReservationStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus     `bson:"paymentStatus" json:"paymentStatus"`
	PaymentRef    string            `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	CheckInTime   *time.Time        `bson:"checkInTime,omitempty" json:"checkInTime,omitempty"`
	CheckOutTime  *time.Time        `bson:"checkOutTime,omitempty" json:"checkOutTime,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	ApprovedBy    string            `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time        `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	Notes         string            `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CreateReservationRequest is the payload for booking a spot.
type CreateReservationRequest struct {
	SpotID    string    `json:"spotId" binding:"required"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime"`
	// Duration in hours, used when EndTime is omitted.
	Duration  float64 `json:"duration"`
	UserID    string  `json:"-"`
	UserName  string  `json:"-"`
	UserPhone string  `json:"-"`
}
