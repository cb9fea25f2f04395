package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/api/middleware"
	"github.com/hoshigrove/chasen-backend/api/responses"
	"github.com/hoshigrove/chasen-backend/api/validators"
	"github.com/hoshigrove/chasen-backend/internal/rfq"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
)

type rfqLineItemRequest struct {
	SKUID            string  `json:"sku_id" validate:"required,uuid4"`
	Qty              int     `json:"qty" validate:"required,gt=0"`
	TargetPriceCents *int    `json:"target_price_cents" validate:"omitempty,gt=0"`
	Notes            *string `json:"notes" validate:"omitempty,max=500"`
}

type createRFQRequest struct {
	Title              string               `json:"title" validate:"required,max=200"`
	DestinationCountry string               `json:"destination_country" validate:"required,len=2"`
	DestinationCity    *string              `json:"destination_city" validate:"omitempty,max=100"`
	Incoterm           string               `json:"incoterm" validate:"required"`
	NeededBy           *time.Time           `json:"needed_by"`
	LineItems          []rfqLineItemRequest `json:"line_items" validate:"required,min=1,max=50,dive"`
}

// CreateRFQ submits a buyer RFQ spanning one or more sellers' SKUs.
func CreateRFQ(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createRFQRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		incoterm, err := enums.ParseIncoterm(req.Incoterm)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid incoterm"))
			return
		}

		items := make([]rfq.LineItemInput, 0, len(req.LineItems))
		for _, item := range req.LineItems {
			skuID, err := uuid.Parse(item.SKUID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid sku_id").
						WithDetails(map[string]any{"sku_id": item.SKUID}))
				return
			}
			items = append(items, rfq.LineItemInput{
				SKUID:            skuID,
				Qty:              item.Qty,
				TargetPriceCents: item.TargetPriceCents,
				Notes:            item.Notes,
			})
		}

		created, err := svc.CreateRFQ(r.Context(), rfq.CreateRFQInput{
			BuyerID:            buyerID,
			Title:              req.Title,
			DestinationCountry: req.DestinationCountry,
			DestinationCity:    req.DestinationCity,
			Incoterm:           incoterm,
			NeededBy:           req.NeededBy,
			LineItems:          items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// BuyerRFQList returns the calling buyer's RFQs.
func BuyerRFQList(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
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

		var filters rfq.RFQFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseRFQStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.BuyerRFQs(r.Context(), buyerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// BuyerRFQDetail returns one of the calling buyer's RFQs with line items.
func BuyerRFQDetail(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rfqID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.BuyerRFQDetail(r.Context(), buyerID, rfqID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SellerRFQList returns open RFQs containing at least one line item the
// calling seller owns.
func SellerRFQList(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.SellerRFQs(r.Context(), sellerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SellerRFQDetail returns an RFQ narrowed to the seller's own line items.
func SellerRFQDetail(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := contextUUID(middleware.SellerIDFromContext(r.Context()), "seller")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rfqID, err := pathUUID(r, "rfqId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.SellerRFQDetail(r.Context(), sellerID, rfqID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
