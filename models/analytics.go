package models

type Analytics struct {
	TotalUsers            int64   `json:"totalUsers"`
	TotalSpots            int     `json:"totalSpots"`
	AvailableSpots        int     `json:"availableSpots"`
	OccupiedSpots         int     `json:"occupiedSpots"`
	MaintenanceSpots      int     `json:"maintenanceSpots"`
	TotalReservations     int     `json:"totalReservations"`
	PendingReservations   int     `json:"pendingReservations"`
	ApprovedReservations  int     `json:"approvedReservations"`
	CompletedReservations int     `json:"completedReservations"`
	TotalRevenue          float64 `json:"totalRevenue"`
	OccupancyRate         string  `json:"occupancyRate"`
}
