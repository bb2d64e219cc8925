package api

import (
	"context"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/search"

	"go.uber.org/zap"
)

// Centers filters then text-searches the center list
func (c *Console) Centers(criteria search.CenterCriteria, term string) []models.Center {
	snap := c.store.Snapshot()
	centers := search.FilterCenters(snap.Centers, snap.Materials, criteria)
	return search.SearchCenters(centers, term)
}

func (c *Console) Center(id string) (models.Center, error) {
	return c.store.Center(id)
}

// CreateCenter stores the center, filling blank coordinates from the
// geocoder when one is configured.
func (c *Console) CreateCenter(ctx context.Context, center models.Center) (models.Center, error) {
	c.locate(ctx, &center)
	created, err := c.store.CreateCenter(ctx, center)
	if err != nil {
		return models.Center{}, err
	}
	zap.L().Info("Center created",
		zap.String("center_id", created.Id),
		zap.String("city", created.City))
	return created, nil
}

func (c *Console) UpdateCenter(ctx context.Context, center models.Center) error {
	c.locate(ctx, &center)
	return c.store.UpdateCenter(ctx, center)
}

func (c *Console) DeleteCenter(ctx context.Context, id string) error {
	return c.store.DeleteCenter(ctx, id)
}

func (c *Console) locate(ctx context.Context, center *models.Center) {
	if c.geocoder == nil || center.Latitude != "" || center.Longitude != "" || center.City == "" {
		return
	}
	point, err := c.geocoder.Geocode(ctx, center.FullAddress, center.City, center.Country)
	if err != nil {
		zap.L().Warn("Unable to geocode center",
			zap.String("city", center.City),
			zap.Error(err))
		return
	}
	center.Latitude = point.Latitude
	center.Longitude = point.Longitude
}
