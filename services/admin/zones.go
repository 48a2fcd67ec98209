package admin

import (
	"context"

	"smartparking/models"

	"go.uber.org/zap"
)

func (a *DefaultAdminService) CreateZone(ctx context.Context, in models.ZoneInput) (*models.Zone, error) {
	zone := &models.Zone{
		Name:            in.Name,
		Description:     in.Description,
		Coordinates:     in.Coordinates,
		TotalSpots:      in.TotalSpots,
		AvailableSpots:  in.AvailableSpots,
		PriceMultiplier: in.PriceMultiplier,
		Features:        in.Features,
	}
	if zone.PriceMultiplier == 0 {
		zone.PriceMultiplier = 1
	}
	if err := a.Zones.Create(ctx, zone); err != nil {
		return nil, repoError("zone", err)
	}
	a.logger().Info("Zone created", zap.String("zoneID", zone.ID), zap.String("name", zone.Name))
	return zone, nil
}

func (a *DefaultAdminService) UpdateZone(ctx context.Context, id string, in models.ZoneInput) (*models.Zone, error) {
	if err := a.Zones.Update(ctx, id, in); err != nil {
		return nil, repoError("zone", err)
	}
	zone, err := a.Zones.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("zone", err)
	}
	return zone, nil
}

func (a *DefaultAdminService) DeleteZone(ctx context.Context, id string) error {
	if err := a.Zones.Delete(ctx, id); err != nil {
		return repoError("zone", err)
	}
	a.logger().Info("Zone deleted", zap.String("zoneID", id))
	return nil
}

func (a *DefaultAdminService) ListZones(ctx context.Context) ([]models.Zone, error) {
	zones, err := a.Zones.List(ctx)
	if err != nil {
		return nil, repoError("zones", err)
	}
	return zones, nil
}
