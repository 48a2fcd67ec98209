package admin

import (
	"context"
	"fmt"

	"smartparking/models"

	"go.uber.org/zap"
)

// CreateSpot adds a spot in the available state.
func (a *DefaultAdminService) CreateSpot(ctx context.Context, in models.SpotInput) (*models.Spot, error) {
	spot := &models.Spot{
		Number:       in.Number,
		Zone:         in.Zone,
		Type:         in.Type,
		Size:         in.Size,
		Accessible:   in.Accessible,
		Coordinates:  in.Coordinates,
		Status:       models.SpotAvailable,
		PricePerHour: in.PricePerHour,
		Features:     in.Features,
		QRCode:       in.QRCode,
	}
	if err := a.Spots.Create(ctx, spot); err != nil {
		return nil, repoError("spot", err)
	}
	a.logger().Info("Spot created", zap.String("spotID", spot.ID), zap.String("number", spot.Number))
	return spot, nil
}

// UpdateSpot edits the descriptive fields; occupancy is never touched here.
func (a *DefaultAdminService) UpdateSpot(ctx context.Context, id string, in models.SpotInput) (*models.Spot, error) {
	if err := a.Spots.Update(ctx, id, in); err != nil {
		return nil, repoError("spot", err)
	}
	return a.GetSpot(ctx, id)
}

func (a *DefaultAdminService) DeleteSpot(ctx context.Context, id string) error {
	if err := a.Spots.Delete(ctx, id); err != nil {
		return repoError("spot", err)
	}
	a.logger().Info("Spot deleted", zap.String("spotID", id))
	return nil
}

func (a *DefaultAdminService) GetSpot(ctx context.Context, id string) (*models.Spot, error) {
	spot, err := a.Spots.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("spot", err)
	}
	return spot, nil
}

func (a *DefaultAdminService) ListSpots(ctx context.Context, zone string) ([]models.Spot, error) {
	spots, err := a.Spots.List(ctx, zone)
	if err != nil {
		return nil, repoError("spots", err)
	}
	return spots, nil
}

// SetSpotStatus overrides the spot's status. Moving to maintenance or back to
// available drops any occupancy hold.
func (a *DefaultAdminService) SetSpotStatus(ctx context.Context, id string, status models.SpotStatus) (*models.Spot, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	clearHold := status == models.SpotMaintenance || status == models.SpotAvailable
	if err := a.Spots.SetStatus(ctx, id, status, clearHold); err != nil {
		return nil, repoError("spot", err)
	}
	a.logger().Info("Spot status overridden", zap.String("spotID", id), zap.String("status", string(status)))
	return a.GetSpot(ctx, id)
}
