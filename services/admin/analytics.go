package admin

import (
	"context"
	"fmt"

	"smartparking/models"
)

// GetAnalytics summarizes users, spots, reservations and paid revenue.
func (a *DefaultAdminService) GetAnalytics(ctx context.Context) (*models.Analytics, error) {
	spots, err := a.Spots.List(ctx, "")
	if err != nil {
		return nil, repoError("spots", err)
	}
	reservations, err := a.Reservations.List(ctx, "")
	if err != nil {
		return nil, repoError("reservations", err)
	}
	users, err := a.Users.Count()
	if err != nil {
		return nil, repoError("users", err)
	}

	out := &models.Analytics{
		TotalUsers:        users,
		TotalSpots:        len(spots),
		TotalReservations: len(reservations),
	}
	for _, s := range spots {
		switch s.Status {
		case models.SpotAvailable:
			out.AvailableSpots++
		case models.SpotOccupied:
			out.OccupiedSpots++
		case models.SpotMaintenance:
			out.MaintenanceSpots++
		}
	}
	for _, r := range reservations {
		switch r.Status {
		case models.ReservationPending:
			out.PendingReservations++
		case models.ReservationApproved:
			out.ApprovedReservations++
		case models.ReservationCompleted:
			out.CompletedReservations++
		}
		if r.PaymentStatus == models.PaymentPaid {
			out.TotalRevenue += r.TotalCost
		}
	}
	out.OccupancyRate = occupancyRate(out.OccupiedSpots, out.TotalSpots)
	return out, nil
}

func occupancyRate(occupied, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(occupied)/float64(total)*100)
}
