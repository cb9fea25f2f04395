package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order   *models.Order
	history []models.OrderStatusHistory
	updates map[string]any
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.order = order
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderLineItems(ctx context.Context, items []models.OrderLineItem) error {
	return nil
}

func (s *stubOrdersRepo) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	s.history = append(s.history, *entry)
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.order
	return &copy, nil
}

func (s *stubOrdersRepo) FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubOrdersRepo) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = status
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestOrder(sellerID uuid.UUID, status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:       uuid.New(),
		Number:   "ORD-20260826-AB12CD",
		QuoteID:  uuid.New(),
		RFQID:    uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: sellerID,
		Status:   status,
	}
}

func strPtr(v string) *string {
	return &v
}

func TestUpdateStatusWalksFullLifecycle(t *testing.T) {
	sellerID := uuid.New()
	actorID := uuid.New()
	repo := &stubOrdersRepo{order: newTestOrder(sellerID, enums.OrderStatusPendingPayment)}

	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	steps := []enums.OrderStatus{
		enums.OrderStatusPaid,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusInTransit,
		enums.OrderStatusDelivered,
		enums.OrderStatusCompleted,
	}

	for _, next := range steps {
		input := UpdateStatusInput{
			OrderID:     repo.order.ID,
			SellerID:    sellerID,
			ActorUserID: actorID,
			NewStatus:   next,
		}
		if next == enums.OrderStatusShipped {
			input.TrackingNumber = strPtr("TRACK123")
			input.Carrier = strPtr("FedEx")
		}
		updated, err := svc.UpdateStatus(context.Background(), input)
		if err != nil {
			t.Fatalf("transition to %s returned error: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected status %s, got %s", next, updated.Status)
		}
		if next == enums.OrderStatusShipped {
			if updated.ShippedAt == nil {
				t.Fatal("expected shippedAt stamp on shipped transition")
			}
			if updated.TrackingNumber == nil || *updated.TrackingNumber != "TRACK123" {
				t.Fatal("expected tracking number to be stored")
			}
			if updated.Carrier == nil || *updated.Carrier != "FedEx" {
				t.Fatal("expected carrier to be stored")
			}
		}
		if next == enums.OrderStatusDelivered && updated.DeliveredAt == nil {
			t.Fatal("expected deliveredAt stamp on delivered transition")
		}
	}

	if len(repo.history) != len(steps) {
		t.Fatalf("expected %d history rows, got %d", len(steps), len(repo.history))
	}
	for i, next := range steps {
		if repo.history[i].Status != next {
			t.Fatalf("history[%d] = %s, expected %s", i, repo.history[i].Status, next)
		}
		if repo.history[i].ChangedBy != actorID {
			t.Fatalf("history[%d] recorded wrong actor", i)
		}
	}

	// terminal state admits nothing further
	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     repo.order.ID,
		SellerID:    sellerID,
		ActorUserID: actorID,
		NewStatus:   enums.OrderStatusCancelled,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict leaving completed, got %v", err)
	}
}

func TestUpdateStatusRejectsIllegalJump(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubOrdersRepo{order: newTestOrder(sellerID, enums.OrderStatusPendingPayment)}

	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     repo.order.ID,
		SellerID:    sellerID,
		ActorUserID: uuid.New(),
		NewStatus:   enums.OrderStatusShipped,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if !strings.Contains(typed.Message(), "pending_payment") || !strings.Contains(typed.Message(), "shipped") {
		t.Fatalf("expected message to name both transition ends, got %q", typed.Message())
	}
	if repo.order.Status != enums.OrderStatusPendingPayment {
		t.Fatalf("order status mutated to %s on failed transition", repo.order.Status)
	}
	if len(repo.history) != 0 {
		t.Fatalf("expected no history rows on failed transition, got %d", len(repo.history))
	}
}

func TestUpdateStatusEnforcesSellerOwnership(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(uuid.New(), enums.OrderStatusPendingPayment)}

	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     repo.order.ID,
		SellerID:    uuid.New(),
		ActorUserID: uuid.New(),
		NewStatus:   enums.OrderStatusPaid,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign seller, got %v", err)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	repo := &stubOrdersRepo{}

	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     uuid.New(),
		SellerID:    uuid.New(),
		ActorUserID: uuid.New(),
		NewStatus:   enums.OrderStatusPaid,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBuyerOrderDetailOwnership(t *testing.T) {
	sellerID := uuid.New()
	repo := &stubOrdersRepo{order: newTestOrder(sellerID, enums.OrderStatusPaid)}

	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	got, err := svc.BuyerOrderDetail(context.Background(), repo.order.BuyerID, repo.order.ID)
	if err != nil {
		t.Fatalf("BuyerOrderDetail returned error: %v", err)
	}
	if got.ID != repo.order.ID {
		t.Fatal("returned wrong order")
	}

	_, err = svc.BuyerOrderDetail(context.Background(), uuid.New(), repo.order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign buyer, got %v", err)
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from  enums.OrderStatus
		to    enums.OrderStatus
		legal bool
	}{
		{enums.OrderStatusPendingPayment, enums.OrderStatusPaid, true},
		{enums.OrderStatusPendingPayment, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPendingPayment, enums.OrderStatusShipped, false},
		{enums.OrderStatusPaid, enums.OrderStatusRefunded, true},
		{enums.OrderStatusPaid, enums.OrderStatusDelivered, false},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped, true},
		{enums.OrderStatusProcessing, enums.OrderStatusCancelled, false},
		{enums.OrderStatusShipped, enums.OrderStatusInTransit, true},
		{enums.OrderStatusInTransit, enums.OrderStatusDelivered, true},
		{enums.OrderStatusDelivered, enums.OrderStatusCompleted, true},
		{enums.OrderStatusCompleted, enums.OrderStatusRefunded, false},
		{enums.OrderStatusCancelled, enums.OrderStatusPaid, false},
		{enums.OrderStatusRefunded, enums.OrderStatusPaid, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.legal {
			t.Fatalf("CanTransition(%s, %s) = %v, expected %v", tc.from, tc.to, got, tc.legal)
		}
	}
}
