package rfq

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/pkg/db/models"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
)

// LineItemInput is one requested SKU in a new RFQ.
type LineItemInput struct {
	SKUID            uuid.UUID
	Qty              int
	TargetPriceCents *int
	Notes            *string
}

// CreateRFQInput carries a buyer's RFQ submission.
type CreateRFQInput struct {
	BuyerID            uuid.UUID
	Title              string
	DestinationCountry string
	DestinationCity    *string
	Incoterm           enums.Incoterm
	NeededBy           *time.Time
	LineItems          []LineItemInput
}

// RFQDetail is the buyer view of an RFQ together with the id of its
// companion message thread.
type RFQDetail struct {
	*models.RFQ
	MessageThreadID *uuid.UUID `json:"message_thread_id,omitempty"`
}

// RFQFilters narrows RFQ listings.
type RFQFilters struct {
	Status *enums.RFQStatus
}

// RFQSummary is the listing row shared by buyer and seller views. For seller
// views ItemCount counts only the seller's own line items.
type RFQSummary struct {
	ID                 uuid.UUID       `json:"id"`
	Number             string          `json:"number"`
	BuyerID            uuid.UUID       `json:"buyer_id"`
	Title              string          `json:"title"`
	DestinationCountry string          `json:"destination_country"`
	Incoterm           enums.Incoterm  `json:"incoterm"`
	Status             enums.RFQStatus `json:"status"`
	ItemCount          int             `json:"item_count"`
	ExpiresAt          time.Time       `json:"expires_at"`
	CreatedAt          time.Time       `json:"created_at"`
}

// RFQList is a cursor page of RFQ summaries.
type RFQList struct {
	RFQs       []RFQSummary `json:"rfqs"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

func summarize(rfq models.RFQ) RFQSummary {
	return RFQSummary{
		ID:                 rfq.ID,
		Number:             rfq.Number,
		BuyerID:            rfq.BuyerID,
		Title:              rfq.Title,
		DestinationCountry: rfq.DestinationCountry,
		Incoterm:           rfq.Incoterm,
		Status:             rfq.Status,
		ItemCount:          len(rfq.LineItems),
		ExpiresAt:          rfq.ExpiresAt,
		CreatedAt:          rfq.CreatedAt,
	}
}
