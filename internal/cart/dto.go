package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	"github.com/hoshigrove/chasen-backend/pkg/types"
)

// AddItemInput adds or tops up one SKU in the buyer's active cart.
type AddItemInput struct {
	BuyerID uuid.UUID
	SKUID   uuid.UUID
	Qty     int
	Notes   *string
}

// UpdateItemInput changes quantity or notes on an existing cart item.
type UpdateItemInput struct {
	BuyerID uuid.UUID
	SKUID   uuid.UUID
	Qty     *int
	Notes   *string
}

// CheckoutInput drives the buy-now fast path.
type CheckoutInput struct {
	BuyerID         uuid.UUID
	ActorUserID     uuid.UUID
	ShippingAddress *types.Address
}

// CheckoutResult carries one order per distinct seller in the cart.
type CheckoutResult struct {
	Orders []*models.Order `json:"orders"`
}

// ConvertToRFQInput carries the metadata of the negotiated path: one RFQ
// spanning the whole multi-seller cart.
type ConvertToRFQInput struct {
	BuyerID            uuid.UUID
	Title              string
	DestinationCountry string
	DestinationCity    *string
	Incoterm           enums.Incoterm
	NeededBy           *time.Time
}
