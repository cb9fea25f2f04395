package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/internal/orders"
	"github.com/hoshigrove/chasen-backend/internal/rfq"
	"github.com/hoshigrove/chasen-backend/pkg/db"
	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/numbering"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives quote submission, RFQ aggregate status recomputation, and
// the quote-acceptance path that creates orders.
type Service interface {
	CreateQuote(ctx context.Context, input CreateQuoteInput) (*models.Quote, error)
	AcceptQuote(ctx context.Context, input AcceptQuoteInput) (*models.Order, error)
	BuyerQuotes(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error)
	BuyerQuoteDetail(ctx context.Context, buyerID, quoteID uuid.UUID) (*models.Quote, error)
	SellerQuotes(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error)
	SellerQuoteDetail(ctx context.Context, sellerID, quoteID uuid.UUID) (*models.Quote, error)
}

type service struct {
	repo   Repository
	rfqs   rfq.Repository
	orders orders.Repository
	tx     txRunner
	now    func() time.Time
}

// NewService builds a quotes service with the required dependencies.
func NewService(repo Repository, rfqRepo rfq.Repository, orderRepo orders.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if rfqRepo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:   repo,
		rfqs:   rfqRepo,
		orders: orderRepo,
		tx:     tx,
		now:    time.Now,
	}, nil
}

// CreateQuote validates seller ownership of every priced line, computes
// totals server-side, and recomputes the parent RFQ's aggregate status.
func (s *service) CreateQuote(ctx context.Context, input CreateQuoteInput) (*models.Quote, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing")
	}
	if input.RFQID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rfq id required")
	}
	if !input.Incoterm.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid incoterm %q", input.Incoterm))
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", input.Currency))
	}
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote requires at least one line item")
	}
	if input.ShippingCents < 0 || input.TaxCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping and tax must not be negative")
	}

	now := s.now()
	if !input.ValidUntil.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote validity must end in the future")
	}

	var quote *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rfqs := s.rfqs.WithTx(tx)

		parent, err := rfqs.FindRFQ(ctx, input.RFQID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rfq")
		}
		if !parent.Status.OpenForQuoting() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "rfq is not open for quoting")
		}
		if !now.Before(parent.ExpiresAt) {
			// The expired error rolls this tx back; the stamp goes through
			// the base repo so it still commits.
			if err := s.rfqs.UpdateRFQ(ctx, parent.ID, map[string]any{"status": enums.RFQStatusExpired}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire rfq")
			}
			return pkgerrors.New(pkgerrors.CodeExpired, "rfq has expired").
				WithDetails(map[string]any{"expires_at": parent.ExpiresAt})
		}

		parentLines := make(map[uuid.UUID]models.RFQLineItem, len(parent.LineItems))
		for _, line := range parent.LineItems {
			parentLines[line.ID] = line
		}

		subtotal := 0
		items := make([]models.QuoteLineItem, 0, len(input.LineItems))
		for _, line := range input.LineItems {
			parentLine, ok := parentLines[line.RFQLineItemID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "quote references unknown rfq line item")
			}
			if parentLine.SellerID != input.SellerID {
				return pkgerrors.New(pkgerrors.CodeValidation, "quote contains skus not owned by seller").
					WithDetails(map[string]any{"sku_id": parentLine.SKUID.String()})
			}
			if line.UnitPriceCents <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
			}
			total := parentLine.Qty * line.UnitPriceCents
			subtotal += total
			items = append(items, models.QuoteLineItem{
				RFQLineItemID:  parentLine.ID,
				SKUID:          parentLine.SKUID,
				Qty:            parentLine.Qty,
				Unit:           parentLine.Unit,
				UnitPriceCents: line.UnitPriceCents,
				TotalCents:     total,
				Notes:          line.Notes,
			})
		}

		quote = &models.Quote{
			Number:        numbering.NewQuoteNumber(now),
			RFQID:         parent.ID,
			SellerID:      input.SellerID,
			SubtotalCents: subtotal,
			ShippingCents: input.ShippingCents,
			TaxCents:      input.TaxCents,
			TotalCents:    subtotal + input.ShippingCents + input.TaxCents,
			Currency:      input.Currency,
			Incoterm:      input.Incoterm,
			ValidUntil:    input.ValidUntil,
			Status:        enums.QuoteStatusSubmitted,
		}
		if _, err := repo.CreateQuote(ctx, quote); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "quote number already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
		}
		for i := range items {
			items[i].QuoteID = quote.ID
		}
		if err := repo.CreateLineItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote line items")
		}
		quote.LineItems = items

		aggregate, err := s.aggregateStatus(ctx, repo, parent)
		if err != nil {
			return err
		}
		if aggregate != parent.Status {
			if err := rfqs.UpdateRFQ(ctx, parent.ID, map[string]any{"status": aggregate}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rfq aggregate status")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// aggregateStatus is QUOTED only once every distinct seller represented in
// the RFQ's line items has a live quote; one quote per seller is enough,
// whether or not it covers all the seller's lines.
func (s *service) aggregateStatus(ctx context.Context, repo Repository, parent *models.RFQ) (enums.RFQStatus, error) {
	quoted, err := repo.DistinctQuotedSellers(ctx, parent.ID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quoted sellers")
	}
	quotedSet := make(map[uuid.UUID]struct{}, len(quoted))
	for _, sellerID := range quoted {
		quotedSet[sellerID] = struct{}{}
	}
	for _, line := range parent.LineItems {
		if _, ok := quotedSet[line.SellerID]; !ok {
			return enums.RFQStatusPartiallyQuoted, nil
		}
	}
	return enums.RFQStatusQuoted, nil
}

// AcceptQuote commits four effects atomically: the quote stamp, the RFQ
// stamp, the order creation, and the order's first history row.
func (s *service) AcceptQuote(ctx context.Context, input AcceptQuoteInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rfqs := s.rfqs.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		quote, err := repo.FindQuote(ctx, input.QuoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
		}

		parent, err := rfqs.FindRFQ(ctx, quote.RFQID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent rfq")
		}
		if parent.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "rfq does not belong to buyer")
		}
		if quote.Status != enums.QuoteStatusSubmitted {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("quote in status %s cannot be accepted", quote.Status))
		}

		// Acceptance is legal strictly before validUntil. The stamp goes
		// through the base repo so the rollback triggered by the expired
		// error cannot undo it.
		now := s.now()
		if !now.Before(quote.ValidUntil) {
			if err := s.repo.UpdateQuote(ctx, quote.ID, map[string]any{"status": enums.QuoteStatusExpired}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire quote")
			}
			return pkgerrors.New(pkgerrors.CodeExpired, "quote validity has passed").
				WithDetails(map[string]any{"valid_until": quote.ValidUntil})
		}

		if err := repo.UpdateQuote(ctx, quote.ID, map[string]any{
			"status":      enums.QuoteStatusAccepted,
			"accepted_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept quote")
		}
		if err := rfqs.UpdateRFQ(ctx, parent.ID, map[string]any{"status": enums.RFQStatusAccepted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept rfq")
		}

		order = &models.Order{
			Number:          numbering.NewOrderNumber(now),
			QuoteID:         quote.ID,
			RFQID:           parent.ID,
			BuyerID:         input.BuyerID,
			SellerID:        quote.SellerID,
			Status:          enums.OrderStatusPendingPayment,
			SubtotalCents:   quote.SubtotalCents,
			ShippingCents:   quote.ShippingCents,
			TaxCents:        quote.TaxCents,
			TotalCents:      quote.TotalCents,
			Currency:        quote.Currency,
			ShippingAddress: input.ShippingAddress,
		}
		if _, err := orderRepo.CreateOrder(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderLineItem, 0, len(quote.LineItems))
		for _, line := range quote.LineItems {
			items = append(items, models.OrderLineItem{
				OrderID:        order.ID,
				SKUID:          line.SKUID,
				Qty:            line.Qty,
				Unit:           line.Unit,
				UnitPriceCents: line.UnitPriceCents,
				TotalCents:     line.TotalCents,
			})
		}
		if err := orderRepo.CreateOrderLineItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order line items")
		}
		order.LineItems = items

		if err := orderRepo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    enums.OrderStatusPendingPayment,
			ChangedBy: input.ActorUserID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) BuyerQuotes(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	list, err := s.repo.ListBuyerQuotes(ctx, buyerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer quotes")
	}
	return list, nil
}

func (s *service) BuyerQuoteDetail(ctx context.Context, buyerID, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.find(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	parent, err := s.rfqs.FindRFQ(ctx, quote.RFQID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent rfq")
	}
	if parent.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quote does not belong to buyer")
	}
	if err := s.expireIfStale(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) SellerQuotes(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters QuoteFilters) (*QuoteList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing")
	}
	list, err := s.repo.ListSellerQuotes(ctx, sellerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller quotes")
	}
	return list, nil
}

func (s *service) SellerQuoteDetail(ctx context.Context, sellerID, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.find(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quote does not belong to seller")
	}
	if err := s.expireIfStale(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *service) find(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	if quoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	quote, err := s.repo.FindQuote(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

// expireIfStale stamps a submitted quote EXPIRED once validUntil has passed.
func (s *service) expireIfStale(ctx context.Context, quote *models.Quote) error {
	if quote.Status != enums.QuoteStatusSubmitted || s.now().Before(quote.ValidUntil) {
		return nil
	}
	if err := s.repo.UpdateQuote(ctx, quote.ID, map[string]any{"status": enums.QuoteStatusExpired}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire quote")
	}
	quote.Status = enums.QuoteStatusExpired
	return nil
}
