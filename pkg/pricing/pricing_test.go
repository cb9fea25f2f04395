package pricing

import (
	"testing"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
)

func tiers(pairs ...[2]int) []models.PriceTier {
	out := make([]models.PriceTier, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.PriceTier{MinQty: p[0], PricePerUnitCents: p[1]})
	}
	return out
}

func TestResolveTierPicksHighestEligible(t *testing.T) {
	ladder := tiers([2]int{1, 5000}, [2]int{10, 4500}, [2]int{50, 4000})

	cases := []struct {
		name      string
		qty       int
		wantCents int
	}{
		{name: "exact lowest", qty: 1, wantCents: 5000},
		{name: "between tiers", qty: 9, wantCents: 5000},
		{name: "exact boundary", qty: 10, wantCents: 4500},
		{name: "above boundary", qty: 49, wantCents: 4500},
		{name: "top tier", qty: 500, wantCents: 4000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tier, err := ResolveTier(tc.qty, ladder)
			if err != nil {
				t.Fatalf("ResolveTier returned error: %v", err)
			}
			if tier.PricePerUnitCents != tc.wantCents {
				t.Fatalf("expected %d cents, got %d", tc.wantCents, tier.PricePerUnitCents)
			}
		})
	}
}

func TestResolveTierFallsBackBelowLowestTier(t *testing.T) {
	ladder := tiers([2]int{10, 4500}, [2]int{50, 4000})

	tier, err := ResolveTier(3, ladder)
	if err != nil {
		t.Fatalf("ResolveTier returned error: %v", err)
	}
	if tier.MinQty != 10 || tier.PricePerUnitCents != 4500 {
		t.Fatalf("expected fallback to smallest tier, got min qty %d price %d", tier.MinQty, tier.PricePerUnitCents)
	}
}

func TestResolveTierRejectsBadInput(t *testing.T) {
	if _, err := ResolveTier(0, tiers([2]int{1, 100})); err == nil {
		t.Fatal("expected error for non-positive quantity")
	}
	if _, err := ResolveTier(5, nil); err == nil {
		t.Fatal("expected error for empty tier list")
	}
}

func TestResolveUnitPrice(t *testing.T) {
	cents, err := ResolveUnitPrice(25, tiers([2]int{1, 5000}, [2]int{10, 4500}))
	if err != nil {
		t.Fatalf("ResolveUnitPrice returned error: %v", err)
	}
	if cents != 4500 {
		t.Fatalf("expected 4500, got %d", cents)
	}
}
