package models

type PaymentIntentRequest struct {
	ReservationID string `json:"reservationId" binding:"required"`
}

// PaymentIntent is what the client needs to confirm a card payment.
type PaymentIntent struct {
	ID            string  `json:"id"`
	ClientSecret  string  `json:"clientSecret"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	ReservationID string  `json:"reservationId"`
	TotalCost     float64 `json:"totalCost"`
}

// PaymentOutcome is the decoded payment callback.
type PaymentOutcome struct {
	IntentID      string
	ReservationID string
	UserID        string
	Succeeded     bool
	FailureReason string
}
