package controllers

import (
	"net/http"
	"time"

	"github.com/hoshigrove/chasen-backend/api/middleware"
	"github.com/hoshigrove/chasen-backend/api/responses"
	"github.com/hoshigrove/chasen-backend/api/validators"
	"github.com/hoshigrove/chasen-backend/internal/cart"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
	"github.com/hoshigrove/chasen-backend/pkg/types"
	"github.com/google/uuid"
)

type addCartItemRequest struct {
	SKUID string  `json:"sku_id" validate:"required,uuid4"`
	Qty   int     `json:"qty" validate:"required,gt=0"`
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type updateCartItemRequest struct {
	Qty   *int    `json:"qty" validate:"omitempty,gt=0"`
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type checkoutRequest struct {
	ShippingAddress types.Address `json:"shipping_address" validate:"required"`
}

type convertToRFQRequest struct {
	Title              string     `json:"title" validate:"required,max=200"`
	DestinationCountry string     `json:"destination_country" validate:"required,len=2"`
	DestinationCity    *string    `json:"destination_city" validate:"omitempty,max=100"`
	Incoterm           string     `json:"incoterm" validate:"required"`
	NeededBy           *time.Time `json:"needed_by"`
}

// GetCart returns the buyer's active cart, creating one on first access.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		found, err := svc.GetCart(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, found)
	}
}

// AddCartItem adds or tops up one SKU in the active cart.
func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skuID, err := uuid.Parse(req.SKUID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid sku_id"))
			return
		}

		updated, err := svc.AddItem(r.Context(), cart.AddItemInput{
			BuyerID: buyerID,
			SKUID:   skuID,
			Qty:     req.Qty,
			Notes:   req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, updated)
	}
}

// UpdateCartItem changes quantity or notes on a cart item.
func UpdateCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skuID, err := pathUUID(r, "skuId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateItem(r.Context(), cart.UpdateItemInput{
			BuyerID: buyerID,
			SKUID:   skuID,
			Qty:     req.Qty,
			Notes:   req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// RemoveCartItem deletes one SKU from the active cart.
func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skuID, err := pathUUID(r, "skuId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.RemoveItem(r.Context(), buyerID, skuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ClearCart removes every item from the active cart.
func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.ClearCart(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// CheckoutCart runs the buy-now fast path: one order per seller in the cart.
func CheckoutCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req checkoutRequest
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

		result, err := svc.Checkout(r.Context(), cart.CheckoutInput{
			BuyerID:         buyerID,
			ActorUserID:     actorID,
			ShippingAddress: &req.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ConvertCartToRFQ runs the negotiated path: one multi-seller RFQ.
func ConvertCartToRFQ(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req convertToRFQRequest
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

		created, err := svc.ConvertToRFQ(r.Context(), cart.ConvertToRFQInput{
			BuyerID:            buyerID,
			Title:              req.Title,
			DestinationCountry: req.DestinationCountry,
			DestinationCity:    req.DestinationCity,
			Incoterm:           incoterm,
			NeededBy:           req.NeededBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
