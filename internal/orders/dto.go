package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
)

// OrderFilters narrows order listings.
type OrderFilters struct {
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// OrderSummary is the listing row shared by buyer and seller views.
type OrderSummary struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	RFQID      uuid.UUID         `json:"rfq_id"`
	QuoteID    uuid.UUID         `json:"quote_id"`
	BuyerID    uuid.UUID         `json:"buyer_id"`
	SellerID   uuid.UUID         `json:"seller_id"`
	Status     enums.OrderStatus `json:"status"`
	TotalCents int               `json:"total_cents"`
	Currency   enums.Currency    `json:"currency"`
	ItemCount  int               `json:"item_count"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderList is a cursor page of order summaries.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

func summarize(order models.Order) OrderSummary {
	return OrderSummary{
		ID:         order.ID,
		Number:     order.Number,
		RFQID:      order.RFQID,
		QuoteID:    order.QuoteID,
		BuyerID:    order.BuyerID,
		SellerID:   order.SellerID,
		Status:     order.Status,
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		ItemCount:  len(order.LineItems),
		CreatedAt:  order.CreatedAt,
	}
}

// UpdateStatusInput carries a seller's requested order transition.
type UpdateStatusInput struct {
	OrderID        uuid.UUID
	SellerID       uuid.UUID
	ActorUserID    uuid.UUID
	NewStatus      enums.OrderStatus
	Notes          *string
	TrackingNumber *string
	Carrier        *string
}
