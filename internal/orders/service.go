package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the order fulfillment state machine.
type Service interface {
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	BuyerOrderDetail(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	SellerOrderDetail(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

// UpdateStatus applies one transition of the order state machine. The status
// update and its history row commit together or not at all.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.NewStatus))
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.SellerID != input.SellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
		}
		if !CanTransition(order.Status, input.NewStatus) {
			return transitionError(order.Status, input.NewStatus)
		}

		now := s.now()
		updates := map[string]any{"status": input.NewStatus}
		switch input.NewStatus {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
			if input.TrackingNumber != nil {
				updates["tracking_number"] = *input.TrackingNumber
			}
			if input.Carrier != nil {
				updates["carrier"] = *input.Carrier
			}
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		}

		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		entry := &models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    input.NewStatus,
			Notes:     input.Notes,
			ChangedBy: input.ActorUserID,
		}
		if err := repo.AppendStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		order.Status = input.NewStatus
		switch input.NewStatus {
		case enums.OrderStatusShipped:
			order.ShippedAt = &now
			if input.TrackingNumber != nil {
				order.TrackingNumber = input.TrackingNumber
			}
			if input.Carrier != nil {
				order.Carrier = input.Carrier
			}
		case enums.OrderStatusDelivered:
			order.DeliveredAt = &now
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) BuyerOrderDetail(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.detail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to buyer")
	}
	return order, nil
}

func (s *service) SellerOrderDetail(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.detail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
	}
	return order, nil
}

func (s *service) detail(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order detail")
	}
	return order, nil
}
