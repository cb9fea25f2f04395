package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/api/middleware"
	"github.com/hoshigrove/chasen-backend/api/responses"
	"github.com/hoshigrove/chasen-backend/api/validators"
	"github.com/hoshigrove/chasen-backend/internal/quotes"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
	"github.com/hoshigrove/chasen-backend/pkg/types"
)

type quoteLineItemRequest struct {
	RFQLineItemID  string  `json:"rfq_line_item_id" validate:"required,uuid4"`
	UnitPriceCents int     `json:"unit_price_cents" validate:"required,gt=0"`
	Notes          *string `json:"notes" validate:"omitempty,max=500"`
}

type createQuoteRequest struct {
	RFQID         string                 `json:"rfq_id" validate:"required,uuid4"`
	Incoterm      string                 `json:"incoterm" validate:"required"`
	Currency      string                 `json:"currency" validate:"required"`
	ValidUntil    time.Time              `json:"valid_until" validate:"required"`
	ShippingCents int                    `json:"shipping_cents" validate:"gte=0"`
	TaxCents      int                    `json:"tax_cents" validate:"gte=0"`
	LineItems     []quoteLineItemRequest `json:"line_items" validate:"required,min=1,max=50,dive"`
}

type acceptQuoteRequest struct {
	ShippingAddress types.Address `json:"shipping_address" validate:"required"`
}

// CreateQuote submits a seller's priced response to an open RFQ.
func CreateQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := contextUUID(middleware.SellerIDFromContext(r.Context()), "seller")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rfqID, err := uuid.Parse(req.RFQID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid rfq_id"))
			return
		}
		incoterm, err := enums.ParseIncoterm(req.Incoterm)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid incoterm"))
			return
		}
		currency, err := enums.ParseCurrency(req.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
			return
		}

		items := make([]quotes.LineItemInput, 0, len(req.LineItems))
		for _, item := range req.LineItems {
			lineID, err := uuid.Parse(item.RFQLineItemID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid rfq_line_item_id").
						WithDetails(map[string]any{"rfq_line_item_id": item.RFQLineItemID}))
				return
			}
			items = append(items, quotes.LineItemInput{
				RFQLineItemID:  lineID,
				UnitPriceCents: item.UnitPriceCents,
				Notes:          item.Notes,
			})
		}

		created, err := svc.CreateQuote(r.Context(), quotes.CreateQuoteInput{
			SellerID:      sellerID,
			RFQID:         rfqID,
			Incoterm:      incoterm,
			Currency:      currency,
			ValidUntil:    req.ValidUntil,
			ShippingCents: req.ShippingCents,
			TaxCents:      req.TaxCents,
			LineItems:     items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// AcceptQuote accepts a submitted quote and returns the created order.
func AcceptQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := contextUUID(middleware.UserIDFromContext(r.Context()), "user")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req acceptQuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if missing := req.ShippingAddress.Validate(); missing != "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
					WithDetails(map[string]any{"missing": missing}))
			return
		}

		order, err := svc.AcceptQuote(r.Context(), quotes.AcceptQuoteInput{
			BuyerID:         buyerID,
			ActorUserID:     actorID,
			QuoteID:         quoteID,
			ShippingAddress: &req.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func quoteFilters(r *http.Request) (quotes.QuoteFilters, error) {
	var filters quotes.QuoteFilters
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseQuoteStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	return filters, nil
}

// BuyerQuoteList returns quotes on the calling buyer's RFQs.
func BuyerQuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := quoteFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.BuyerQuotes(r.Context(), buyerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// BuyerQuoteDetail returns one quote on the calling buyer's RFQ.
func BuyerQuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.BuyerQuoteDetail(r.Context(), buyerID, quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SellerQuoteList returns the calling seller's quotes.
func SellerQuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := contextUUID(middleware.SellerIDFromContext(r.Context()), "seller")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := quoteFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.SellerQuotes(r.Context(), sellerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SellerQuoteDetail returns one of the calling seller's quotes.
func SellerQuoteDetail(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := contextUUID(middleware.SellerIDFromContext(r.Context()), "seller")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quoteID, err := pathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.SellerQuoteDetail(r.Context(), sellerID, quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
