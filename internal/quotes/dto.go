package quotes

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	"github.com/hoshigrove/chasen-backend/pkg/types"
)

// LineItemInput prices one line of the parent RFQ. Quantity, unit, and SKU
// are taken from the referenced RFQ line item, never from the client.
type LineItemInput struct {
	RFQLineItemID  uuid.UUID
	UnitPriceCents int
	Notes          *string
}

// CreateQuoteInput carries a seller's priced response to an RFQ.
type CreateQuoteInput struct {
	SellerID      uuid.UUID
	RFQID         uuid.UUID
	Incoterm      enums.Incoterm
	Currency      enums.Currency
	ValidUntil    time.Time
	ShippingCents int
	TaxCents      int
	LineItems     []LineItemInput
}

// AcceptQuoteInput carries a buyer's acceptance of a submitted quote.
type AcceptQuoteInput struct {
	BuyerID         uuid.UUID
	ActorUserID     uuid.UUID
	QuoteID         uuid.UUID
	ShippingAddress *types.Address
}

// QuoteFilters narrows quote listings.
type QuoteFilters struct {
	Status *enums.QuoteStatus
}

// QuoteSummary is the listing row shared by buyer and seller views.
type QuoteSummary struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	RFQID      uuid.UUID         `json:"rfq_id"`
	SellerID   uuid.UUID         `json:"seller_id"`
	Status     enums.QuoteStatus `json:"status"`
	TotalCents int               `json:"total_cents"`
	Currency   enums.Currency    `json:"currency"`
	ItemCount  int               `json:"item_count"`
	ValidUntil time.Time         `json:"valid_until"`
	CreatedAt  time.Time         `json:"created_at"`
}

// QuoteList is a cursor page of quote summaries.
type QuoteList struct {
	Quotes     []QuoteSummary `json:"quotes"`
	NextCursor *string        `json:"next_cursor,omitempty"`
}

func summarize(quote models.Quote) QuoteSummary {
	return QuoteSummary{
		ID:         quote.ID,
		Number:     quote.Number,
		RFQID:      quote.RFQID,
		SellerID:   quote.SellerID,
		Status:     quote.Status,
		TotalCents: quote.TotalCents,
		Currency:   quote.Currency,
		ItemCount:  len(quote.LineItems),
		ValidUntil: quote.ValidUntil,
		CreatedAt:  quote.CreatedAt,
	}
}
