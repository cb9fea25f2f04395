// Package pricing resolves the effective unit price for a SKU quantity
// from its volume tiers.
package pricing

import (
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
)

// ResolveTier selects the tier with the highest min qty at or below the
// requested quantity. Quantities below every tier fall back to the
// smallest-min-qty tier so the SKU always prices.
func ResolveTier(qty int, tiers []models.PriceTier) (*models.PriceTier, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if len(tiers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku has no price tiers")
	}

	var selected *models.PriceTier
	for _, tier := range tiers {
		if tier.MinQty <= qty {
			if selected == nil || tier.MinQty > selected.MinQty {
				copy := tier
				selected = &copy
			}
		}
	}
	if selected != nil {
		return selected, nil
	}

	var smallest *models.PriceTier
	for _, tier := range tiers {
		if smallest == nil || tier.MinQty < smallest.MinQty {
			copy := tier
			smallest = &copy
		}
	}
	return smallest, nil
}

// ResolveUnitPrice returns the effective per-unit price in cents for qty.
func ResolveUnitPrice(qty int, tiers []models.PriceTier) (int, error) {
	tier, err := ResolveTier(qty, tiers)
	if err != nil {
		return 0, err
	}
	return tier.PricePerUnitCents, nil
}
