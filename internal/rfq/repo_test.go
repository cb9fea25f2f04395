package rfq

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

func setupRFQTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	rfqs := `
CREATE TABLE IF NOT EXISTS rfqs (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  buyer_id TEXT NOT NULL,
  title TEXT NOT NULL,
  destination_country TEXT NOT NULL,
  destination_city TEXT,
  incoterm TEXT NOT NULL,
  needed_by DATETIME,
  submitted_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'submitted',
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS rfq_line_items (
  id TEXT PRIMARY KEY,
  rfq_id TEXT NOT NULL,
  sku_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit TEXT NOT NULL,
  target_price_cents INTEGER,
  notes TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(rfqs).Error)
	require.NoError(t, db.Exec(lineItems).Error)
	return db
}

func seedRFQ(t *testing.T, repo Repository, buyerID uuid.UUID, status enums.RFQStatus, sellerIDs ...uuid.UUID) *models.RFQ {
	t.Helper()

	now := time.Now()
	rfq := &models.RFQ{
		ID:                 uuid.New(),
		Number:             "RFQ-" + uuid.NewString()[:8],
		BuyerID:            buyerID,
		Title:              "Restock",
		DestinationCountry: "US",
		Incoterm:           enums.IncotermFOB,
		SubmittedAt:        now,
		ExpiresAt:          now.Add(14 * 24 * time.Hour),
		Status:             status,
		CreatedAt:          now,
	}
	created, err := repo.CreateRFQ(context.Background(), rfq)
	require.NoError(t, err)

	items := make([]models.RFQLineItem, 0, len(sellerIDs))
	for _, sellerID := range sellerIDs {
		items = append(items, models.RFQLineItem{
			ID:       uuid.New(),
			RFQID:    created.ID,
			SKUID:    uuid.New(),
			SellerID: sellerID,
			Qty:      25,
			Unit:     enums.UnitKg,
		})
	}
	require.NoError(t, repo.CreateLineItems(context.Background(), items))
	return created
}

func TestRepoFindRFQLoadsLineItems(t *testing.T) {
	db := setupRFQTestDB(t)
	repo := NewRepository(db)

	rfq := seedRFQ(t, repo, uuid.New(), enums.RFQStatusSubmitted, uuid.New(), uuid.New())

	found, err := repo.FindRFQ(context.Background(), rfq.ID)
	require.NoError(t, err)
	assert.Len(t, found.LineItems, 2)
	assert.Equal(t, enums.RFQStatusSubmitted, found.Status)
}

func TestRepoListSellerRFQsScopesAndNarrows(t *testing.T) {
	db := setupRFQTestDB(t)
	repo := NewRepository(db)

	seller1 := uuid.New()
	seller2 := uuid.New()
	buyerID := uuid.New()

	shared := seedRFQ(t, repo, buyerID, enums.RFQStatusSubmitted, seller1, seller2)
	seedRFQ(t, repo, buyerID, enums.RFQStatusSubmitted, seller2)
	seedRFQ(t, repo, buyerID, enums.RFQStatusAccepted, seller1)

	list, err := repo.ListSellerRFQs(context.Background(), seller1, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.RFQs, 1)
	assert.Equal(t, shared.ID, list.RFQs[0].ID)

	// line items narrowed to the seller's own
	assert.Equal(t, 1, list.RFQs[0].ItemCount)
}

func TestRepoListBuyerRFQsStatusFilter(t *testing.T) {
	db := setupRFQTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	seedRFQ(t, repo, buyerID, enums.RFQStatusSubmitted, uuid.New())
	accepted := seedRFQ(t, repo, buyerID, enums.RFQStatusAccepted, uuid.New())
	seedRFQ(t, repo, uuid.New(), enums.RFQStatusAccepted, uuid.New())

	status := enums.RFQStatusAccepted
	list, err := repo.ListBuyerRFQs(context.Background(), buyerID, pagination.Params{}, RFQFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, list.RFQs, 1)
	assert.Equal(t, accepted.ID, list.RFQs[0].ID)
}

func TestRepoUpdateRFQStatus(t *testing.T) {
	db := setupRFQTestDB(t)
	repo := NewRepository(db)

	rfq := seedRFQ(t, repo, uuid.New(), enums.RFQStatusSubmitted, uuid.New())
	require.NoError(t, repo.UpdateRFQ(context.Background(), rfq.ID, map[string]any{
		"status": enums.RFQStatusPartiallyQuoted,
	}))

	found, err := repo.FindRFQ(context.Background(), rfq.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RFQStatusPartiallyQuoted, found.Status)
}
