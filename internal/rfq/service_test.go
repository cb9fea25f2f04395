package rfq

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/internal/catalog"
	"github.com/hoshigrove/chasen-backend/internal/messaging"
	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

type stubRFQRepo struct {
	rfq       *models.RFQ
	items     []models.RFQLineItem
	updates   map[string]any
	createErr error
}

func (s *stubRFQRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRFQRepo) CreateRFQ(ctx context.Context, rfq *models.RFQ) (*models.RFQ, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if rfq.ID == uuid.Nil {
		rfq.ID = uuid.New()
	}
	s.rfq = rfq
	return rfq, nil
}

func (s *stubRFQRepo) CreateLineItems(ctx context.Context, items []models.RFQLineItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubRFQRepo) FindRFQ(ctx context.Context, rfqID uuid.UUID) (*models.RFQ, error) {
	if s.rfq == nil || s.rfq.ID != rfqID {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.rfq
	copy.LineItems = append([]models.RFQLineItem(nil), s.rfq.LineItems...)
	return &copy, nil
}

func (s *stubRFQRepo) ListBuyerRFQs(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters RFQFilters) (*RFQList, error) {
	panic("not implemented")
}

func (s *stubRFQRepo) ListSellerRFQs(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*RFQList, error) {
	panic("not implemented")
}

func (s *stubRFQRepo) UpdateRFQ(ctx context.Context, rfqID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if status, ok := updates["status"].(enums.RFQStatus); ok && s.rfq != nil {
		s.rfq.Status = status
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
	for i := range s.threads {
		if s.threads[i].RFQID == rfqID {
			return &s.threads[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func activeSKUDetail(sellerID uuid.UUID, unit enums.Unit) *catalog.SKUDetail {
	id := uuid.New()
	return &catalog.SKUDetail{
		SKU:           models.SKU{ID: id, Unit: unit, IsActive: true},
		IsActive:      true,
		OwnerSellerID: sellerID,
		ProductMOQ:    1,
	}
}

func newTestService(t *testing.T, repo *stubRFQRepo, cat *stubCatalog, threads *stubThreads) Service {
	t.Helper()
	svc, err := NewService(repo, cat, threads, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestCreateRFQSubmitsWithPolicyStamps(t *testing.T) {
	seller1 := uuid.New()
	seller2 := uuid.New()
	skuA := activeSKUDetail(seller1, enums.UnitKg)
	skuB := activeSKUDetail(seller2, enums.UnitTin)

	repo := &stubRFQRepo{}
	threads := &stubThreads{}
	cat := &stubCatalog{details: map[uuid.UUID]*catalog.SKUDetail{
		skuA.SKU.ID: skuA,
		skuB.SKU.ID: skuB,
	}}
	svc := newTestService(t, repo, cat, threads)

	buyerID := uuid.New()
	created, err := svc.CreateRFQ(context.Background(), CreateRFQInput{
		BuyerID:            buyerID,
		Title:              "Spring ceremonial restock",
		DestinationCountry: "US",
		Incoterm:           enums.IncotermFOB,
		LineItems: []LineItemInput{
			{SKUID: skuA.SKU.ID, Qty: 20},
			{SKUID: skuB.SKU.ID, Qty: 50},
		},
	})
	if err != nil {
		t.Fatalf("CreateRFQ returned error: %v", err)
	}

	if !strings.HasPrefix(created.Number, "RFQ-") {
		t.Fatalf("expected RFQ- number prefix, got %q", created.Number)
	}
	if created.Status != enums.RFQStatusSubmitted {
		t.Fatalf("expected submitted status, got %s", created.Status)
	}
	if got := created.ExpiresAt.Sub(created.SubmittedAt); got != rfqValidity {
		t.Fatalf("expected 14 day expiry window, got %s", got)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 persisted line items, got %d", len(repo.items))
	}
	if repo.items[0].SellerID != seller1 || repo.items[1].SellerID != seller2 {
		t.Fatal("line items did not denormalize seller ownership")
	}
	if repo.items[0].Unit != enums.UnitKg || repo.items[1].Unit != enums.UnitTin {
		t.Fatal("line items did not inherit sku units")
	}
	if len(threads.threads) != 1 || threads.threads[0].RFQID != created.ID {
		t.Fatal("expected companion message thread for the rfq")
	}
}

func TestCreateRFQListsInvalidSKUs(t *testing.T) {
	seller := uuid.New()
	active := activeSKUDetail(seller, enums.UnitKg)
	inactive := activeSKUDetail(seller, enums.UnitKg)
	inactive.IsActive = false
	missing := uuid.New()

	repo := &stubRFQRepo{}
	cat := &stubCatalog{details: map[uuid.UUID]*catalog.SKUDetail{
		active.SKU.ID:   active,
		inactive.SKU.ID: inactive,
	}}
	svc := newTestService(t, repo, cat, &stubThreads{})

	_, err := svc.CreateRFQ(context.Background(), CreateRFQInput{
		BuyerID:            uuid.New(),
		Title:              "Mixed validity",
		DestinationCountry: "DE",
		Incoterm:           enums.IncotermDDP,
		LineItems: []LineItemInput{
			{SKUID: active.SKU.ID, Qty: 10},
			{SKUID: inactive.SKU.ID, Qty: 10},
			{SKUID: missing, Qty: 10},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	ids, ok := details["invalid_sku_ids"].([]string)
	if !ok || len(ids) != 2 {
		t.Fatalf("expected 2 invalid sku ids, got %v", details["invalid_sku_ids"])
	}
	if repo.rfq != nil {
		t.Fatal("rfq persisted despite invalid skus")
	}
}

func TestCreateRFQNumberCollisionMapsToConflict(t *testing.T) {
	seller := uuid.New()
	sku := activeSKUDetail(seller, enums.UnitKg)

	repo := &stubRFQRepo{
		createErr: errors.New(`ERROR: duplicate key value violates unique constraint "rfqs_number_key" (SQLSTATE 23505)`),
	}
	cat := &stubCatalog{details: map[uuid.UUID]*catalog.SKUDetail{sku.SKU.ID: sku}}
	svc := newTestService(t, repo, cat, &stubThreads{})

	_, err := svc.CreateRFQ(context.Background(), CreateRFQInput{
		BuyerID:            uuid.New(),
		Title:              "Collision",
		DestinationCountry: "US",
		Incoterm:           enums.IncotermFOB,
		LineItems:          []LineItemInput{{SKUID: sku.SKU.ID, Qty: 5}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate rfq number, got %v", err)
	}
}

func TestSellerRFQDetailFiltersForeignLines(t *testing.T) {
	seller1 := uuid.New()
	seller2 := uuid.New()
	target := 900

	repo := &stubRFQRepo{rfq: &models.RFQ{
		ID:        uuid.New(),
		BuyerID:   uuid.New(),
		Status:    enums.RFQStatusSubmitted,
		ExpiresAt: time.Now().Add(time.Hour),
		LineItems: []models.RFQLineItem{
			{ID: uuid.New(), SKUID: uuid.New(), SellerID: seller1, Qty: 20, TargetPriceCents: &target},
			{ID: uuid.New(), SKUID: uuid.New(), SellerID: seller2, Qty: 50},
		},
	}}
	svc := newTestService(t, repo, &stubCatalog{}, &stubThreads{})

	view, err := svc.SellerRFQDetail(context.Background(), seller2, repo.rfq.ID)
	if err != nil {
		t.Fatalf("SellerRFQDetail returned error: %v", err)
	}
	if len(view.LineItems) != 1 {
		t.Fatalf("expected exactly 1 visible line item, got %d", len(view.LineItems))
	}
	if view.LineItems[0].SellerID != seller2 {
		t.Fatal("seller saw a foreign line item")
	}
	if view.LineItems[0].TargetPriceCents != nil {
		t.Fatal("foreign target price leaked into seller view")
	}

	_, err = svc.SellerRFQDetail(context.Background(), uuid.New(), repo.rfq.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for uninvolved seller, got %v", err)
	}
}

func TestBuyerRFQDetailOwnershipAndLazyExpiry(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubRFQRepo{rfq: &models.RFQ{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		Status:    enums.RFQStatusSubmitted,
		ExpiresAt: time.Now().Add(-time.Hour),
	}}
	svc := newTestService(t, repo, &stubCatalog{}, &stubThreads{})

	_, err := svc.BuyerRFQDetail(context.Background(), uuid.New(), repo.rfq.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign buyer, got %v", err)
	}

	view, err := svc.BuyerRFQDetail(context.Background(), buyerID, repo.rfq.ID)
	if err != nil {
		t.Fatalf("BuyerRFQDetail returned error: %v", err)
	}
	if view.Status != enums.RFQStatusExpired {
		t.Fatalf("expected lazy expiry to stamp expired, got %s", view.Status)
	}
	if repo.updates == nil {
		t.Fatal("expected expiry to be persisted")
	}
}

func TestBuyerRFQDetailIncludesThreadID(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubRFQRepo{rfq: &models.RFQ{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		Status:    enums.RFQStatusSubmitted,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	threads := &stubThreads{}
	thread, err := threads.CreateThread(context.Background(), repo.rfq.ID, buyerID)
	if err != nil {
		t.Fatalf("CreateThread returned error: %v", err)
	}
	svc := newTestService(t, repo, &stubCatalog{}, threads)

	view, err := svc.BuyerRFQDetail(context.Background(), buyerID, repo.rfq.ID)
	if err != nil {
		t.Fatalf("BuyerRFQDetail returned error: %v", err)
	}
	if view.MessageThreadID == nil || *view.MessageThreadID != thread.ID {
		t.Fatal("buyer detail missing companion thread id")
	}
}

func TestBuyerRFQDetailDoesNotExpireAcceptedRFQ(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubRFQRepo{rfq: &models.RFQ{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		Status:    enums.RFQStatusAccepted,
		ExpiresAt: time.Now().Add(-time.Hour),
	}}
	svc := newTestService(t, repo, &stubCatalog{}, &stubThreads{})

	view, err := svc.BuyerRFQDetail(context.Background(), buyerID, repo.rfq.ID)
	if err != nil {
		t.Fatalf("BuyerRFQDetail returned error: %v", err)
	}
	if view.Status != enums.RFQStatusAccepted {
		t.Fatalf("accepted rfq must not expire, got %s", view.Status)
	}
	if repo.updates != nil {
		t.Fatal("unexpected status update for accepted rfq")
	}
}
