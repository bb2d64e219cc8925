package api

import (
	"context"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/search"

	"go.uber.org/zap"
)

// Materials filters then text-searches the material list
func (c *Console) Materials(criteria search.MaterialCriteria, term string) []models.Material {
	materials := search.FilterMaterials(c.store.Snapshot().Materials, criteria)
	return search.SearchMaterials(materials, term)
}

func (c *Console) Material(id string) (models.Material, error) {
	return c.store.Material(id)
}

// Locations lists the distinct cities materials are stored in
func (c *Console) Locations() []string {
	return search.Locations(c.store.Snapshot().Materials)
}

// CreateMaterial stores the material and mints its token on the ledger.
// A ledger failure is logged; the material is kept.
func (c *Console) CreateMaterial(ctx context.Context, m models.Material) (models.Material, error) {
	created, err := c.store.CreateMaterial(ctx, m)
	if err != nil {
		return models.Material{}, err
	}
	if c.ledger != nil {
		if err := c.ledger.RecordMint(ctx, created); err != nil {
			zap.L().Warn("Failed to mint token on ledger",
				zap.String("material_id", created.Id),
				zap.String("token_id", created.TokenId),
				zap.Error(err))
		}
	}
	zap.L().Info("Material created",
		zap.String("material_id", created.Id),
		zap.String("token_id", created.TokenId))
	return created, nil
}

func (c *Console) UpdateMaterial(ctx context.Context, m models.Material) error {
	return c.store.UpdateMaterial(ctx, m)
}

func (c *Console) DeleteMaterial(ctx context.Context, id string) error {
	return c.store.DeleteMaterial(ctx, id)
}
