package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hoshigrove/chasen-backend/api/responses"
	"github.com/hoshigrove/chasen-backend/internal/identity"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
)

// BuyerContext resolves the caller's buyer profile and seeds the context
// with the buyer id. Callers without a buyer role or profile are refused.
func BuyerContext(svc identity.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(enums.ActorRoleBuyer) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "buyer role required"))
				return
			}

			userID, err := parseContextUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			profile, err := svc.ResolveBuyer(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithBuyerID(r.Context(), profile.ID.String())
			if logg != nil {
				ctx = logg.WithBuyerID(ctx, profile.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SellerContext resolves the caller's seller profile and seeds the context
// with the seller id.
func SellerContext(svc identity.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(enums.ActorRoleSeller) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller role required"))
				return
			}

			userID, err := parseContextUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			profile, err := svc.ResolveSeller(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSellerID(r.Context(), profile.ID.String())
			if logg != nil {
				ctx = logg.WithSellerID(ctx, profile.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseContextUserID(r *http.Request) (uuid.UUID, error) {
	raw := UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return parsed, nil
}
