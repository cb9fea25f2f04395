package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/hoshigrove/chasen-backend/api/middleware"
	"github.com/hoshigrove/chasen-backend/api/responses"
	"github.com/hoshigrove/chasen-backend/api/validators"
	"github.com/hoshigrove/chasen-backend/internal/orders"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
)

type updateOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
	TrackingNumber *string `json:"tracking_number" validate:"omitempty,max=100"`
	Carrier        *string `json:"carrier" validate:"omitempty,max=100"`
}

func orderFilters(r *http.Request) (orders.OrderFilters, error) {
	var filters orders.OrderFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("date_from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_from")
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(query.Get("date_to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_to")
		}
		filters.DateTo = &to
	}
	return filters, nil
}

// BuyerOrderList returns the calling buyer's orders.
func BuyerOrderList(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
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
		filters, err := orderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListBuyerOrders(r.Context(), buyerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// BuyerOrderDetail returns one of the calling buyer's orders with line items
// and status history.
func BuyerOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := contextUUID(middleware.BuyerIDFromContext(r.Context()), "buyer")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.BuyerOrderDetail(r.Context(), buyerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SellerOrderList returns the calling seller's orders.
func SellerOrderList(repo orders.Repository, logg *logger.Logger) http.HandlerFunc {
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
		filters, err := orderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListSellerOrders(r.Context(), sellerID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SellerOrderDetail returns one of the calling seller's orders.
func SellerOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := contextUUID(middleware.SellerIDFromContext(r.Context()), "seller")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.SellerOrderDetail(r.Context(), sellerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// UpdateOrderStatus applies one transition of the order state machine.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := contextUUID(middleware.SellerIDFromContext(r.Context()), "seller")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := contextUUID(middleware.UserIDFromContext(r.Context()), "user")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:        orderID,
			SellerID:       sellerID,
			ActorUserID:    actorID,
			NewStatus:      status,
			Notes:          req.Notes,
			TrackingNumber: req.TrackingNumber,
			Carrier:        req.Carrier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
