package rfq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/internal/catalog"
	"github.com/hoshigrove/chasen-backend/internal/messaging"
	"github.com/hoshigrove/chasen-backend/pkg/db"
	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/numbering"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

// Fixed policy: RFQs stay open for quoting for 14 days after submission.
const rfqValidity = 14 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives RFQ submission and the buyer/seller read surfaces.
type Service interface {
	CreateRFQ(ctx context.Context, input CreateRFQInput) (*models.RFQ, error)
	BuyerRFQs(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters RFQFilters) (*RFQList, error)
	BuyerRFQDetail(ctx context.Context, buyerID, rfqID uuid.UUID) (*RFQDetail, error)
	SellerRFQs(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RFQList, error)
	SellerRFQDetail(ctx context.Context, sellerID, rfqID uuid.UUID) (*models.RFQ, error)
}

type service struct {
	repo    Repository
	catalog catalog.Service
	threads messaging.Repository
	tx      txRunner
	now     func() time.Time
}

// NewService builds an RFQ service with the required dependencies.
func NewService(repo Repository, catalogSvc catalog.Service, threads messaging.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if threads == nil {
		return nil, fmt.Errorf("messaging repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		catalog: catalogSvc,
		threads: threads,
		tx:      tx,
		now:     time.Now,
	}, nil
}

// CreateRFQ validates every referenced SKU, then persists the RFQ, its line
// items, and the companion message thread in one transaction.
func (s *service) CreateRFQ(ctx context.Context, input CreateRFQInput) (*models.RFQ, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rfq title required")
	}
	if input.DestinationCountry == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination country required")
	}
	if !input.Incoterm.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid incoterm %q", input.Incoterm))
	}
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rfq requires at least one line item")
	}

	skuIDs := make([]uuid.UUID, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
		}
		skuIDs = append(skuIDs, item.SKUID)
	}

	details, err := s.catalog.FindSKUs(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	var invalid []string
	for _, id := range skuIDs {
		detail, ok := details[id]
		if !ok || !detail.IsActive {
			invalid = append(invalid, id.String())
		}
	}
	if len(invalid) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rfq references invalid skus").
			WithDetails(map[string]any{"invalid_sku_ids": invalid})
	}

	now := s.now()
	rfq := &models.RFQ{
		Number:             numbering.NewRFQNumber(now),
		BuyerID:            input.BuyerID,
		Title:              input.Title,
		DestinationCountry: input.DestinationCountry,
		DestinationCity:    input.DestinationCity,
		Incoterm:           input.Incoterm,
		NeededBy:           input.NeededBy,
		SubmittedAt:        now,
		ExpiresAt:          now.Add(rfqValidity),
		Status:             enums.RFQStatusSubmitted,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err := repo.CreateRFQ(ctx, rfq)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "rfq number already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rfq")
		}

		items := make([]models.RFQLineItem, 0, len(input.LineItems))
		for _, item := range input.LineItems {
			detail := details[item.SKUID]
			items = append(items, models.RFQLineItem{
				RFQID:            created.ID,
				SKUID:            item.SKUID,
				SellerID:         detail.OwnerSellerID,
				Qty:              item.Qty,
				Unit:             detail.SKU.Unit,
				TargetPriceCents: item.TargetPriceCents,
				Notes:            item.Notes,
			})
		}
		if err := repo.CreateLineItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rfq line items")
		}
		rfq.LineItems = items

		if _, err := s.threads.WithTx(tx).CreateThread(ctx, created.ID, input.BuyerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message thread")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rfq, nil
}

func (s *service) BuyerRFQs(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters RFQFilters) (*RFQList, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	list, err := s.repo.ListBuyerRFQs(ctx, buyerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer rfqs")
	}
	return list, nil
}

func (s *service) BuyerRFQDetail(ctx context.Context, buyerID, rfqID uuid.UUID) (*RFQDetail, error) {
	rfq, err := s.find(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rfq does not belong to buyer")
	}
	if err := s.expireIfStale(ctx, rfq); err != nil {
		return nil, err
	}

	detail := &RFQDetail{RFQ: rfq}
	thread, err := s.threads.FindThreadByRFQ(ctx, rfqID)
	switch {
	case err == nil:
		detail.MessageThreadID = &thread.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load message thread")
	}
	return detail, nil
}

func (s *service) SellerRFQs(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RFQList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing")
	}
	list, err := s.repo.ListSellerRFQs(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller rfqs")
	}
	return list, nil
}

// SellerRFQDetail narrows the RFQ to the seller's own line items. A seller
// never sees another seller's lines or target prices within a shared RFQ.
func (s *service) SellerRFQDetail(ctx context.Context, sellerID, rfqID uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.find(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	owned := make([]models.RFQLineItem, 0, len(rfq.LineItems))
	for _, item := range rfq.LineItems {
		if item.SellerID == sellerID {
			owned = append(owned, item)
		}
	}
	if len(owned) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rfq has no line items for seller")
	}
	rfq.LineItems = owned
	if err := s.expireIfStale(ctx, rfq); err != nil {
		return nil, err
	}
	return rfq, nil
}

func (s *service) find(ctx context.Context, rfqID uuid.UUID) (*models.RFQ, error) {
	if rfqID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rfq id required")
	}
	rfq, err := s.repo.FindRFQ(ctx, rfqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rfq")
	}
	return rfq, nil
}

// expireIfStale stamps an open RFQ EXPIRED once its expiry has passed.
// Expiry is checked at read time, never by a background sweep.
func (s *service) expireIfStale(ctx context.Context, rfq *models.RFQ) error {
	if !rfq.Status.OpenForQuoting() || s.now().Before(rfq.ExpiresAt) {
		return nil
	}
	if err := s.repo.UpdateRFQ(ctx, rfq.ID, map[string]any{"status": enums.RFQStatusExpired}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire rfq")
	}
	rfq.Status = enums.RFQStatusExpired
	return nil
}
