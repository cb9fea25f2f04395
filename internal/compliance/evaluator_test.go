package compliance

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
)

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func TestEvaluateUSCeremonialHighValue(t *testing.T) {
	eval := NewEvaluator()

	result, err := eval.Evaluate(Input{
		DestinationCountry: "us",
		ProductCategory:    enums.ProductCategoryCeremonial,
		DeclaredValueUSD:   decimal.NewFromInt(3000),
		WeightKg:           decimal.NewFromInt(40),
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	for _, doc := range []string{"commercial_invoice", "fda_prior_notice", "phytosanitary_certificate", "customs_entry_summary"} {
		if !contains(result.RequiredDocs, doc) {
			t.Fatalf("expected required doc %q, got %v", doc, result.RequiredDocs)
		}
	}
	if !contains(result.Flags, "high_value") {
		t.Fatalf("expected high_value flag, got %v", result.Flags)
	}
	if result.ComplianceLevel != enums.ComplianceLevelStandard {
		t.Fatalf("expected standard level, got %s", result.ComplianceLevel)
	}
	if result.DisclaimerText == "" {
		t.Fatal("expected disclaimer text")
	}
}

func TestEvaluateMissingCertificationWarns(t *testing.T) {
	eval := NewEvaluator()

	result, err := eval.Evaluate(Input{
		DestinationCountry: "DE",
		ProductCategory:    enums.ProductCategoryPremium,
		DeclaredValueUSD:   decimal.NewFromInt(500),
		WeightKg:           decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !contains(result.Flags, "missing_certification") {
		t.Fatalf("expected missing_certification flag, got %v", result.Flags)
	}

	withCert, err := eval.Evaluate(Input{
		DestinationCountry: "DE",
		ProductCategory:    enums.ProductCategoryPremium,
		DeclaredValueUSD:   decimal.NewFromInt(500),
		WeightKg:           decimal.NewFromInt(10),
		Certifications:     []string{"EU_ORGANIC"},
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if contains(withCert.Flags, "missing_certification") {
		t.Fatal("certification held but still flagged missing")
	}
}

func TestEvaluateUnknownCountryFallsBack(t *testing.T) {
	eval := NewEvaluator()

	result, err := eval.Evaluate(Input{
		DestinationCountry: "BR",
		ProductCategory:    enums.ProductCategoryCulinary,
		DeclaredValueUSD:   decimal.NewFromInt(100),
		WeightKg:           decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !contains(result.RequiredDocs, "commercial_invoice") {
		t.Fatalf("expected default docs, got %v", result.RequiredDocs)
	}
	if !contains(result.Flags, "bulk_weight") {
		t.Fatalf("expected bulk_weight flag over 100kg, got %v", result.Flags)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected fallback warning for unknown destination")
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	eval := NewEvaluator()

	_, err := eval.Evaluate(Input{ProductCategory: enums.ProductCategoryCulinary})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty country, got %v", err)
	}

	_, err = eval.Evaluate(Input{
		DestinationCountry: "US",
		ProductCategory:    enums.ProductCategory("matcha-ish"),
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad category, got %v", err)
	}
}
