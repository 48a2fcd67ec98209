// File: smartparking/handlers/bundle.go
package handlers

import (
	"context"

	userRepoPkg "smartparking/database/repository/user"
	"smartparking/models"
)

// SweepRunner is the slice of occupancy.Sweeper the handlers drive.
type SweepRunner interface {
	Trigger()
	RunOnce(ctx context.Context) (models.SweepReport, bool)
	LastReport() models.SweepReport
}

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	Auth        *AuthHandler
	Spots       *SpotHandler
	Reservation *ReservationHandler
	Payment     *PaymentHandler
	Admin       *AdminHandler
}
