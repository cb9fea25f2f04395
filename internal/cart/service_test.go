package cart

import (
	"context"
	"testing"

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
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
	"github.com/hoshigrove/chasen-backend/pkg/types"
)

type stubCartRepo struct {
	cart  *models.Cart
	items []*models.CartItem
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubCartRepo) FindActiveCart(ctx context.Context, buyerID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil || s.cart.BuyerID != buyerID || s.cart.Status != enums.CartStatusActive {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.cart
	copy.Items = nil
	for _, item := range s.items {
		copy.Items = append(copy.Items, *item)
	}
	return &copy, nil
}

func (s *stubCartRepo) CreateCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	s.cart = cart
	return cart, nil
}

func (s *stubCartRepo) FindItem(ctx context.Context, cartID, skuID uuid.UUID) (*models.CartItem, error) {
	for _, item := range s.items {
		if item.CartID == cartID && item.SKUID == skuID {
			copy := *item
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items = append(s.items, item)
	return nil
}

func (s *stubCartRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	for _, item := range s.items {
		if item.ID != itemID {
			continue
		}
		if qty, ok := updates["qty"].(int); ok {
			item.Qty = qty
		}
		if price, ok := updates["unit_price_cents"].(int); ok {
			item.UnitPriceCents = price
		}
		if total, ok := updates["total_cents"].(int); ok {
			item.TotalCents = total
		}
		if notes, ok := updates["notes"].(string); ok {
			item.Notes = &notes
		}
	}
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return nil
}

func (s *stubCartRepo) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	s.items = nil
	return nil
}

func (s *stubCartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	for _, item := range s.items {
		if item.CartID == cartID {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (s *stubCartRepo) UpdateCart(ctx context.Context, cartID uuid.UUID, updates map[string]any) error {
	if s.cart == nil || s.cart.ID != cartID {
		return gorm.ErrRecordNotFound
	}
	if subtotal, ok := updates["subtotal_cents"].(int); ok {
		s.cart.SubtotalCents = subtotal
	}
	if count, ok := updates["item_count"].(int); ok {
		s.cart.ItemCount = count
	}
	if status, ok := updates["status"].(enums.CartStatus); ok {
		s.cart.Status = status
	}
	return nil
}

type stubCatalog struct {
	details map[uuid.UUID]*catalog.SKUDetail
}

func (s *stubCatalog) FindSKU(ctx context.Context, skuID uuid.UUID) (*catalog.SKUDetail, error) {
	detail, ok := s.details[skuID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
	}
	return detail, nil
}

func (s *stubCatalog) FindSKUs(ctx context.Context, skuIDs []uuid.UUID) (map[uuid.UUID]*catalog.SKUDetail, error) {
	found := make(map[uuid.UUID]*catalog.SKUDetail)
	for _, id := range skuIDs {
		if detail, ok := s.details[id]; ok {
			found[id] = detail
		}
	}
	return found, nil
}

type stubRFQRepo struct {
	rfqs  []*models.RFQ
	lines []models.RFQLineItem
}

func (s *stubRFQRepo) WithTx(tx *gorm.DB) rfq.Repository {
	return s
}

func (s *stubRFQRepo) CreateRFQ(ctx context.Context, r *models.RFQ) (*models.RFQ, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.rfqs = append(s.rfqs, r)
	return r, nil
}

func (s *stubRFQRepo) CreateLineItems(ctx context.Context, items []models.RFQLineItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	s.lines = append(s.lines, items...)
	return nil
}

func (s *stubRFQRepo) FindRFQ(ctx context.Context, rfqID uuid.UUID) (*models.RFQ, error) {
	panic("not implemented")
}

func (s *stubRFQRepo) ListBuyerRFQs(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters rfq.RFQFilters) (*rfq.RFQList, error) {
	panic("not implemented")
}

func (s *stubRFQRepo) ListSellerRFQs(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*rfq.RFQList, error) {
	panic("not implemented")
}

func (s *stubRFQRepo) UpdateRFQ(ctx context.Context, rfqID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

type stubQuoteRepo struct {
	quotes []*models.Quote
	lines  []models.QuoteLineItem
}

func (s *stubQuoteRepo) WithTx(tx *gorm.DB) quotes.Repository {
	return s
}

func (s *stubQuoteRepo) CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	s.quotes = append(s.quotes, quote)
	return quote, nil
}

func (s *stubQuoteRepo) CreateLineItems(ctx context.Context, items []models.QuoteLineItem) error {
	s.lines = append(s.lines, items...)
	return nil
}

func (s *stubQuoteRepo) FindQuote(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	panic("not implemented")
}

func (s *stubQuoteRepo) ListBuyerQuotes(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters quotes.QuoteFilters) (*quotes.QuoteList, error) {
	panic("not implemented")
}

func (s *stubQuoteRepo) ListSellerQuotes(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters quotes.QuoteFilters) (*quotes.QuoteList, error) {
	panic("not implemented")
}

func (s *stubQuoteRepo) UpdateQuote(ctx context.Context, quoteID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubQuoteRepo) DistinctQuotedSellers(ctx context.Context, rfqID uuid.UUID) ([]uuid.UUID, error) {
	panic("not implemented")
}

type stubOrderRepo struct {
	orders  []*models.Order
	items   []models.OrderLineItem
	history []models.OrderStatusHistory
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) orders.Repository {
	return s
}

func (s *stubOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *stubOrderRepo) CreateOrderLineItems(ctx context.Context, items []models.OrderLineItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubOrderRepo) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubOrderRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrderRepo) FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrderRepo) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubOrderRepo) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubOrderRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	panic("not implemented")
}

type stubThreads struct {
	threads []models.MessageThread
}

func (s *stubThreads) WithTx(tx *gorm.DB) messaging.Repository {
	return s
}

func (s *stubThreads) CreateThread(ctx context.Context, rfqID, buyerID uuid.UUID) (*models.MessageThread, error) {
	thread := models.MessageThread{ID: uuid.New(), RFQID: rfqID, BuyerID: buyerID}
	s.threads = append(s.threads, thread)
	return &thread, nil
}

func (s *stubThreads) FindThreadByRFQ(ctx context.Context, rfqID uuid.UUID) (*models.MessageThread, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type testDeps struct {
	repo    *stubCartRepo
	catalog *stubCatalog
	rfqs    *stubRFQRepo
	quotes  *stubQuoteRepo
	orders  *stubOrderRepo
	threads *stubThreads
}

func newTestService(t *testing.T) (Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		repo:    &stubCartRepo{},
		catalog: &stubCatalog{details: make(map[uuid.UUID]*catalog.SKUDetail)},
		rfqs:    &stubRFQRepo{},
		quotes:  &stubQuoteRepo{},
		orders:  &stubOrderRepo{},
		threads: &stubThreads{},
	}
	svc, err := NewService(deps.repo, deps.catalog, deps.rfqs, deps.quotes, deps.orders, deps.threads, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, deps
}

func tieredSKU(deps *testDeps, sellerID uuid.UUID, moq, available int) uuid.UUID {
	skuID := uuid.New()
	qty := available
	deps.catalog.details[skuID] = &catalog.SKUDetail{
		SKU: models.SKU{
			ID:       skuID,
			Unit:     enums.UnitKg,
			Currency: enums.CurrencyUSD,
			IsActive: true,
		},
		IsActive:      true,
		OwnerSellerID: sellerID,
		ProductMOQ:    moq,
		AvailableQty:  &qty,
		PriceTiers: []models.PriceTier{
			{MinQty: 1, PricePerUnitCents: 500},
			{MinQty: 10, PricePerUnitCents: 450},
			{MinQty: 50, PricePerUnitCents: 400},
		},
	}
	return skuID
}

func TestAddItemResolvesTierPrice(t *testing.T) {
	svc, deps := newTestService(t)
	buyerID := uuid.New()
	skuID := tieredSKU(deps, uuid.New(), 1, 1000)

	cart, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, SKUID: skuID, Qty: 10})
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if cart.Items[0].UnitPriceCents != 450 {
		t.Fatalf("expected tier price 450 for qty 10, got %d", cart.Items[0].UnitPriceCents)
	}
	if cart.SubtotalCents != 4500 || cart.ItemCount != 1 {
		t.Fatalf("cart totals not recomputed: subtotal %d, count %d", cart.SubtotalCents, cart.ItemCount)
	}
}

func TestAddItemMergesAndReprices(t *testing.T) {
	svc, deps := newTestService(t)
	buyerID := uuid.New()
	skuID := tieredSKU(deps, uuid.New(), 1, 1000)

	if _, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, SKUID: skuID, Qty: 30}); err != nil {
		t.Fatalf("first AddItem returned error: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, SKUID: skuID, Qty: 30})
	if err != nil {
		t.Fatalf("second AddItem returned error: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected merged single item, got %d", len(cart.Items))
	}
	if cart.Items[0].Qty != 60 {
		t.Fatalf("expected merged qty 60, got %d", cart.Items[0].Qty)
	}
	if cart.Items[0].UnitPriceCents != 400 {
		t.Fatalf("expected re-resolved tier price 400 for qty 60, got %d", cart.Items[0].UnitPriceCents)
	}
}

func TestAddItemEnforcesMOQ(t *testing.T) {
	svc, deps := newTestService(t)
	skuID := tieredSKU(deps, uuid.New(), 25, 1000)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: uuid.New(), SKUID: skuID, Qty: 10})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error below moq, got %v", err)
	}
}

func TestAddItemEnforcesAdvisoryInventory(t *testing.T) {
	svc, deps := newTestService(t)
	skuID := tieredSKU(deps, uuid.New(), 1, 20)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: uuid.New(), SKUID: skuID, Qty: 25})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error over inventory, got %v", err)
	}
}

func TestCheckoutSynthesizesOnePathPerSeller(t *testing.T) {
	svc, deps := newTestService(t)
	buyerID := uuid.New()
	actorID := uuid.New()
	seller1 := uuid.New()
	seller2 := uuid.New()
	sku1 := tieredSKU(deps, seller1, 1, 1000)
	sku2 := tieredSKU(deps, seller1, 1, 1000)
	sku3 := tieredSKU(deps, seller2, 1, 1000)

	for _, skuID := range []uuid.UUID{sku1, sku2, sku3} {
		if _, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, SKUID: skuID, Qty: 10}); err != nil {
			t.Fatalf("AddItem returned error: %v", err)
		}
	}

	result, err := svc.Checkout(context.Background(), CheckoutInput{
		BuyerID:     buyerID,
		ActorUserID: actorID,
		ShippingAddress: &types.Address{
			Line1:      "1 Harbor Way",
			City:       "Oakland",
			PostalCode: "94607",
			Country:    "US",
		},
	})
	if err != nil {
		t.Fatalf("Checkout returned error: %v", err)
	}

	if len(result.Orders) != 2 {
		t.Fatalf("expected one order per seller, got %d", len(result.Orders))
	}
	for _, order := range result.Orders {
		if order.Status != enums.OrderStatusPendingPayment {
			t.Fatalf("expected pending_payment, got %s", order.Status)
		}
	}
	if result.Orders[0].SellerID != seller1 || result.Orders[1].SellerID != seller2 {
		t.Fatal("orders not partitioned by seller in cart order")
	}
	if result.Orders[0].TotalCents != 9000 || result.Orders[1].TotalCents != 4500 {
		t.Fatalf("unexpected order totals: %d, %d", result.Orders[0].TotalCents, result.Orders[1].TotalCents)
	}

	if len(deps.rfqs.rfqs) != 2 || len(deps.quotes.quotes) != 2 {
		t.Fatalf("expected 2 synthesized rfqs and quotes, got %d and %d", len(deps.rfqs.rfqs), len(deps.quotes.quotes))
	}
	for _, r := range deps.rfqs.rfqs {
		if r.Status != enums.RFQStatusAccepted {
			t.Fatalf("synthesized rfq not accepted, got %s", r.Status)
		}
	}
	for _, q := range deps.quotes.quotes {
		if q.Status != enums.QuoteStatusAccepted || q.AcceptedAt == nil {
			t.Fatal("synthesized quote not accepted")
		}
	}
	if len(deps.orders.history) != 2 {
		t.Fatalf("expected one history row per order, got %d", len(deps.orders.history))
	}
	if deps.repo.cart.Status != enums.CartStatusConverted {
		t.Fatalf("cart not converted, got %s", deps.repo.cart.Status)
	}
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Checkout(context.Background(), CheckoutInput{
		BuyerID:     uuid.New(),
		ActorUserID: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestConvertToRFQSpansAllSellers(t *testing.T) {
	svc, deps := newTestService(t)
	buyerID := uuid.New()
	seller1 := uuid.New()
	seller2 := uuid.New()
	sku1 := tieredSKU(deps, seller1, 1, 1000)
	sku2 := tieredSKU(deps, seller2, 1, 1000)

	for _, skuID := range []uuid.UUID{sku1, sku2} {
		if _, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, SKUID: skuID, Qty: 10}); err != nil {
			t.Fatalf("AddItem returned error: %v", err)
		}
	}

	created, err := svc.ConvertToRFQ(context.Background(), ConvertToRFQInput{
		BuyerID:            buyerID,
		Title:              "Quarterly restock",
		DestinationCountry: "JP",
		Incoterm:           enums.IncotermCIF,
	})
	if err != nil {
		t.Fatalf("ConvertToRFQ returned error: %v", err)
	}

	if created.Status != enums.RFQStatusSubmitted {
		t.Fatalf("expected submitted rfq, got %s", created.Status)
	}
	if len(created.LineItems) != 2 {
		t.Fatalf("expected rfq to span both sellers, got %d lines", len(created.LineItems))
	}
	sellers := map[uuid.UUID]bool{}
	for _, line := range created.LineItems {
		sellers[line.SellerID] = true
		if line.TargetPriceCents == nil || *line.TargetPriceCents != 450 {
			t.Fatal("cart unit price not carried as target price")
		}
	}
	if !sellers[seller1] || !sellers[seller2] {
		t.Fatal("rfq lines missing a seller")
	}
	if len(deps.threads.threads) != 1 {
		t.Fatalf("expected companion thread, got %d", len(deps.threads.threads))
	}
	if deps.repo.cart.Status != enums.CartStatusConverted {
		t.Fatalf("cart not converted, got %s", deps.repo.cart.Status)
	}
}
