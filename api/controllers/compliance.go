package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hoshigrove/chasen-backend/api/responses"
	"github.com/hoshigrove/chasen-backend/api/validators"
	"github.com/hoshigrove/chasen-backend/internal/compliance"
	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
	"github.com/hoshigrove/chasen-backend/pkg/logger"
)

type evaluateComplianceRequest struct {
	DestinationCountry string   `json:"destination_country" validate:"required,len=2"`
	ProductCategory    string   `json:"product_category" validate:"required"`
	DeclaredValueUSD   string   `json:"declared_value_usd" validate:"required"`
	WeightKg           string   `json:"weight_kg" validate:"required"`
	Certifications     []string `json:"certifications" validate:"omitempty,max=20,dive,max=100"`
}

// EvaluateCompliance returns the advisory import rule result for a shipment.
func EvaluateCompliance(eval compliance.Evaluator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req evaluateComplianceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseProductCategory(req.ProductCategory)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product category"))
			return
		}
		value, err := decimal.NewFromString(req.DeclaredValueUSD)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid declared_value_usd"))
			return
		}
		weight, err := decimal.NewFromString(req.WeightKg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid weight_kg"))
			return
		}

		result, err := eval.Evaluate(compliance.Input{
			DestinationCountry: req.DestinationCountry,
			ProductCategory:    category,
			DeclaredValueUSD:   value,
			WeightKg:           weight,
			Certifications:     req.Certifications,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
