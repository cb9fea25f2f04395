package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/internal/catalog"
	"github.com/hoshigrove/chasen-backend/internal/messaging"
	"github.com/hoshigrove/chasen-backend/internal/orders"
	"github.com/hoshigrove/chasen-backend/internal/quotes"
	"github.com/hoshigrove/chasen-backend/internal/rfq"
	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/numbering"
	"github.com/hoshigrove/chasen-backend/pkg/pricing"
)

// Buy-now carts skip negotiation, so the synthesized RFQ reuses the cart
// lifetime policy and a fixed ex-works incoterm.
const (
	checkoutTitle    = "Direct purchase"
	checkoutIncoterm = enums.IncotermEXW
	rfqValidity      = 14 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the buyer's single active cart and both commitment paths.
type Service interface {
	GetCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.Cart, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, buyerID, skuID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error)
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	ConvertToRFQ(ctx context.Context, input ConvertToRFQInput) (*models.RFQ, error)
}

type service struct {
	repo    Repository
	catalog catalog.Service
	rfqs    rfq.Repository
	quotes  quotes.Repository
	orders  orders.Repository
	threads messaging.Repository
	tx      txRunner
	now     func() time.Time
}

// NewService builds a cart service with the required dependencies.
func NewService(
	repo Repository,
	catalogSvc catalog.Service,
	rfqRepo rfq.Repository,
	quoteRepo quotes.Repository,
	orderRepo orders.Repository,
	threads messaging.Repository,
	tx txRunner,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if rfqRepo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if quoteRepo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
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
		rfqs:    rfqRepo,
		quotes:  quoteRepo,
		orders:  orderRepo,
		threads: threads,
		tx:      tx,
		now:     time.Now,
	}, nil
}

// GetCart returns the buyer's active cart, creating one on first use.
func (s *service) GetCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	return s.getOrCreate(ctx, s.repo, buyerID)
}

func (s *service) getOrCreate(ctx context.Context, repo Repository, buyerID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindActiveCart(ctx, buyerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	cart = &models.Cart{BuyerID: buyerID, Status: enums.CartStatusActive}
	if _, err := repo.CreateCart(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return cart, nil
}

// AddItem adds a SKU or tops up its quantity. The unit price is re-resolved
// from the SKU's current tiers against the combined quantity.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.Cart, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	detail, err := s.catalog.FindSKU(ctx, input.SKUID)
	if err != nil {
		return nil, err
	}
	if !detail.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku is not active")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.getOrCreate(ctx, repo, input.BuyerID)
		if err != nil {
			return err
		}

		qty := input.Qty
		existing, err := repo.FindItem(ctx, cart.ID, input.SKUID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
		}
		if existing != nil {
			qty += existing.Qty
		}

		if err := s.checkQuantity(qty, detail); err != nil {
			return err
		}
		unitPrice, err := pricing.ResolveUnitPrice(qty, detail.PriceTiers)
		if err != nil {
			return err
		}

		if existing != nil {
			updates := map[string]any{
				"qty":              qty,
				"unit_price_cents": unitPrice,
				"total_cents":      qty * unitPrice,
			}
			if input.Notes != nil {
				updates["notes"] = *input.Notes
			}
			if err := repo.UpdateItem(ctx, existing.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		} else {
			item := &models.CartItem{
				CartID:         cart.ID,
				SKUID:          input.SKUID,
				SellerID:       detail.OwnerSellerID,
				Qty:            qty,
				UnitPriceCents: unitPrice,
				TotalCents:     qty * unitPrice,
				Notes:          input.Notes,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
		}
		return s.recomputeTotals(ctx, repo, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, input.BuyerID)
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*models.Cart, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	if input.Qty == nil && input.Notes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.findItem(ctx, repo, input.BuyerID, input.SKUID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Qty != nil {
			qty := *input.Qty
			if qty <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
			}
			detail, err := s.catalog.FindSKU(ctx, input.SKUID)
			if err != nil {
				return err
			}
			if err := s.checkQuantity(qty, detail); err != nil {
				return err
			}
			unitPrice, err := pricing.ResolveUnitPrice(qty, detail.PriceTiers)
			if err != nil {
				return err
			}
			updates["qty"] = qty
			updates["unit_price_cents"] = unitPrice
			updates["total_cents"] = qty * unitPrice
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := repo.UpdateItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		return s.recomputeTotals(ctx, repo, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, input.BuyerID)
}

func (s *service) RemoveItem(ctx context.Context, buyerID, skuID uuid.UUID) (*models.Cart, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.findItem(ctx, repo, buyerID, skuID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		return s.recomputeTotals(ctx, repo, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, buyerID)
}

func (s *service) ClearCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.getOrCreate(ctx, repo, buyerID)
		if err != nil {
			return err
		}
		if err := repo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return s.recomputeTotals(ctx, repo, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, buyerID)
}

// Checkout partitions the cart by seller and synthesizes one already-accepted
// RFQ/quote pair plus one pending-payment order per distinct seller.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	result := &CheckoutResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rfqs := s.rfqs.WithTx(tx)
		quoteRepo := s.quotes.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)
		threads := s.threads.WithTx(tx)

		cart, err := repo.FindActiveCart(ctx, input.BuyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		details, err := s.loadDetails(ctx, cart.Items)
		if err != nil {
			return err
		}

		now := s.now()
		for _, sellerID := range sellerPartition(cart.Items) {
			items := itemsForSeller(cart.Items, sellerID)
			order, err := s.synthesizeSellerOrder(ctx, rfqs, quoteRepo, orderRepo, threads, input, sellerID, items, details, now)
			if err != nil {
				return err
			}
			result.Orders = append(result.Orders, order)
		}

		if err := repo.UpdateCart(ctx, cart.ID, map[string]any{"status": enums.CartStatusConverted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) synthesizeSellerOrder(
	ctx context.Context,
	rfqs rfq.Repository,
	quoteRepo quotes.Repository,
	orderRepo orders.Repository,
	threads messaging.Repository,
	input CheckoutInput,
	sellerID uuid.UUID,
	items []models.CartItem,
	details map[uuid.UUID]*catalog.SKUDetail,
	now time.Time,
) (*models.Order, error) {
	country := ""
	if input.ShippingAddress != nil {
		country = input.ShippingAddress.Country
	}
	synthesized := &models.RFQ{
		Number:             numbering.NewRFQNumber(now),
		BuyerID:            input.BuyerID,
		Title:              checkoutTitle,
		DestinationCountry: country,
		Incoterm:           checkoutIncoterm,
		SubmittedAt:        now,
		ExpiresAt:          now.Add(rfqValidity),
		Status:             enums.RFQStatusAccepted,
	}
	if _, err := rfqs.CreateRFQ(ctx, synthesized); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout rfq")
	}

	subtotal := 0
	currency := enums.CurrencyUSD
	rfqLines := make([]models.RFQLineItem, 0, len(items))
	for i, item := range items {
		if i == 0 {
			if detail, ok := details[item.SKUID]; ok {
				currency = detail.SKU.Currency
			}
		}
		subtotal += item.TotalCents
		rfqLines = append(rfqLines, models.RFQLineItem{
			RFQID:    synthesized.ID,
			SKUID:    item.SKUID,
			SellerID: sellerID,
			Qty:      item.Qty,
			Unit:     details[item.SKUID].SKU.Unit,
			Notes:    item.Notes,
		})
	}
	if err := rfqs.CreateLineItems(ctx, rfqLines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout rfq lines")
	}
	if _, err := threads.CreateThread(ctx, synthesized.ID, input.BuyerID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message thread")
	}

	quote := &models.Quote{
		Number:        numbering.NewQuoteNumber(now),
		RFQID:         synthesized.ID,
		SellerID:      sellerID,
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
		Currency:      currency,
		Incoterm:      checkoutIncoterm,
		ValidUntil:    now,
		Status:        enums.QuoteStatusAccepted,
		AcceptedAt:    &now,
	}
	if _, err := quoteRepo.CreateQuote(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout quote")
	}
	quoteLines := make([]models.QuoteLineItem, 0, len(items))
	for i, item := range items {
		quoteLines = append(quoteLines, models.QuoteLineItem{
			QuoteID:        quote.ID,
			RFQLineItemID:  rfqLines[i].ID,
			SKUID:          item.SKUID,
			Qty:            item.Qty,
			Unit:           rfqLines[i].Unit,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	if err := quoteRepo.CreateLineItems(ctx, quoteLines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout quote lines")
	}

	order := &models.Order{
		Number:          numbering.NewOrderNumber(now),
		QuoteID:         quote.ID,
		RFQID:           synthesized.ID,
		BuyerID:         input.BuyerID,
		SellerID:        sellerID,
		Status:          enums.OrderStatusPendingPayment,
		SubtotalCents:   subtotal,
		TotalCents:      subtotal,
		Currency:        currency,
		ShippingAddress: input.ShippingAddress,
	}
	if _, err := orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout order")
	}
	orderLines := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		orderLines = append(orderLines, models.OrderLineItem{
			OrderID:        order.ID,
			SKUID:          item.SKUID,
			Qty:            item.Qty,
			Unit:           details[item.SKUID].SKU.Unit,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	if err := orderRepo.CreateOrderLineItems(ctx, orderLines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout order lines")
	}
	order.LineItems = orderLines

	if err := orderRepo.AppendStatusHistory(ctx, &models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    enums.OrderStatusPendingPayment,
		ChangedBy: input.ActorUserID,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
	}
	return order, nil
}

// ConvertToRFQ creates a single RFQ spanning the whole multi-seller cart.
func (s *service) ConvertToRFQ(ctx context.Context, input ConvertToRFQInput) (*models.RFQ, error) {
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

	var converted *models.RFQ
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rfqs := s.rfqs.WithTx(tx)

		cart, err := repo.FindActiveCart(ctx, input.BuyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		details, err := s.loadDetails(ctx, cart.Items)
		if err != nil {
			return err
		}

		now := s.now()
		converted = &models.RFQ{
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
		if _, err := rfqs.CreateRFQ(ctx, converted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rfq")
		}

		lines := make([]models.RFQLineItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			target := item.UnitPriceCents
			lines = append(lines, models.RFQLineItem{
				RFQID:            converted.ID,
				SKUID:            item.SKUID,
				SellerID:         item.SellerID,
				Qty:              item.Qty,
				Unit:             details[item.SKUID].SKU.Unit,
				TargetPriceCents: &target,
				Notes:            item.Notes,
			})
		}
		if err := rfqs.CreateLineItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rfq line items")
		}
		converted.LineItems = lines

		if _, err := s.threads.WithTx(tx).CreateThread(ctx, converted.ID, input.BuyerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message thread")
		}

		if err := repo.UpdateCart(ctx, cart.ID, map[string]any{"status": enums.CartStatusConverted}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return converted, nil
}

// checkQuantity enforces the product MOQ and the advisory inventory read.
// The availability check does not reserve stock.
func (s *service) checkQuantity(qty int, detail *catalog.SKUDetail) error {
	if qty < detail.ProductMOQ {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity below product minimum order quantity").
			WithDetails(map[string]any{"moq": detail.ProductMOQ})
	}
	if detail.AvailableQty != nil && qty > *detail.AvailableQty {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available inventory").
			WithDetails(map[string]any{"available_qty": *detail.AvailableQty})
	}
	return nil
}

func (s *service) findItem(ctx context.Context, repo Repository, buyerID, skuID uuid.UUID) (*models.Cart, *models.CartItem, error) {
	cart, err := repo.FindActiveCart(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	item, err := repo.FindItem(ctx, cart.ID, skuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku not in cart")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return cart, item, nil
}

func (s *service) recomputeTotals(ctx context.Context, repo Repository, cartID uuid.UUID) error {
	items, err := repo.ListItems(ctx, cartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart items")
	}
	subtotal := 0
	for _, item := range items {
		subtotal += item.TotalCents
	}
	err = repo.UpdateCart(ctx, cartID, map[string]any{
		"subtotal_cents": subtotal,
		"item_count":     len(items),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart totals")
	}
	return nil
}

func (s *service) loadDetails(ctx context.Context, items []models.CartItem) (map[uuid.UUID]*catalog.SKUDetail, error) {
	skuIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		skuIDs = append(skuIDs, item.SKUID)
	}
	details, err := s.catalog.FindSKUs(ctx, skuIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range skuIDs {
		if _, ok := details[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references unknown sku").
				WithDetails(map[string]any{"sku_id": id.String()})
		}
	}
	return details, nil
}

// sellerPartition returns the distinct sellers in first-seen item order.
func sellerPartition(items []models.CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	var sellerIDs []uuid.UUID
	for _, item := range items {
		if _, ok := seen[item.SellerID]; ok {
			continue
		}
		seen[item.SellerID] = struct{}{}
		sellerIDs = append(sellerIDs, item.SellerID)
	}
	return sellerIDs
}

func itemsForSeller(items []models.CartItem, sellerID uuid.UUID) []models.CartItem {
	var owned []models.CartItem
	for _, item := range items {
		if item.SellerID == sellerID {
			owned = append(owned, item)
		}
	}
	return owned
}
