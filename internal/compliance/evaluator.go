package compliance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
)

// Input describes one shipment for rule matching. Declared value and weight
// use decimal arithmetic; rule thresholds are exact, not float-approximate.
type Input struct {
	DestinationCountry string                `json:"destination_country"`
	ProductCategory    enums.ProductCategory `json:"product_category"`
	DeclaredValueUSD   decimal.Decimal       `json:"declared_value_usd"`
	WeightKg           decimal.Decimal       `json:"weight_kg"`
	Certifications     []string              `json:"certifications"`
}

// Result is the advisory output attached to RFQ and order detail views.
// The workflow never blocks on it.
type Result struct {
	RequiredDocs    []string              `json:"required_docs"`
	Warnings        []string              `json:"warnings"`
	Flags           []string              `json:"flags"`
	DisclaimerText  string                `json:"disclaimer_text"`
	ComplianceLevel enums.ComplianceLevel `json:"compliance_level"`
}

// Evaluator matches shipment facts against the import rule set.
type Evaluator interface {
	Evaluate(input Input) (*Result, error)
}

type countryRule struct {
	requiredDocs   []string
	extraDocs      map[enums.ProductCategory][]string
	requiredCerts  []string
	valueThreshold decimal.Decimal
	thresholdDocs  []string
	level          enums.ComplianceLevel
	disclaimer     string
}

// Thresholds are customs declaration cutoffs for food imports; values at or
// above the cutoff need a formal entry.
var countryRules = map[string]countryRule{
	"US": {
		requiredDocs:   []string{"commercial_invoice", "fda_prior_notice"},
		extraDocs:      map[enums.ProductCategory][]string{enums.ProductCategoryCeremonial: {"phytosanitary_certificate"}},
		valueThreshold: decimal.NewFromInt(2500),
		thresholdDocs:  []string{"customs_entry_summary"},
		level:          enums.ComplianceLevelStandard,
		disclaimer:     "Food imports into the United States require FDA prior notice before arrival.",
	},
	"JP": {
		requiredDocs:   []string{"commercial_invoice", "import_notification"},
		valueThreshold: decimal.NewFromInt(200000),
		thresholdDocs:  []string{"customs_declaration"},
		level:          enums.ComplianceLevelStandard,
		disclaimer:     "Tea imports into Japan are subject to the Food Sanitation Act notification process.",
	},
	"DE": {
		requiredDocs:   []string{"commercial_invoice", "eu_food_safety_declaration"},
		requiredCerts:  []string{"eu_organic"},
		valueThreshold: decimal.NewFromInt(1000),
		thresholdDocs:  []string{"eori_declaration"},
		level:          enums.ComplianceLevelEnhanced,
		disclaimer:     "EU destinations require a food business operator declaration and EORI registration above the duty-free limit.",
	},
	"CN": {
		requiredDocs:   []string{"commercial_invoice", "ciq_inspection_certificate", "health_certificate"},
		valueThreshold: decimal.NewFromInt(5000),
		thresholdDocs:  []string{"cif_customs_declaration"},
		level:          enums.ComplianceLevelRestricted,
		disclaimer:     "Tea imports into China require CIQ inspection and quarantine clearance; shipments may be held for sampling.",
	},
}

var defaultRule = countryRule{
	requiredDocs:   []string{"commercial_invoice"},
	valueThreshold: decimal.NewFromInt(1000),
	thresholdDocs:  []string{"customs_declaration"},
	level:          enums.ComplianceLevelStandard,
	disclaimer:     "Import requirements vary by destination; confirm local food import regulations before shipping.",
}

// Weight above which bulk shipments get a handling warning regardless of
// destination.
var bulkWeightKg = decimal.NewFromInt(100)

type evaluator struct{}

// NewEvaluator builds the default rule-matching evaluator.
func NewEvaluator() Evaluator {
	return &evaluator{}
}

func (e *evaluator) Evaluate(input Input) (*Result, error) {
	country := strings.ToUpper(strings.TrimSpace(input.DestinationCountry))
	if country == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination country required")
	}
	if !input.ProductCategory.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", input.ProductCategory))
	}
	if input.DeclaredValueUSD.IsNegative() || input.WeightKg.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "declared value and weight must not be negative")
	}

	rule, known := countryRules[country]
	if !known {
		rule = defaultRule
	}

	result := &Result{
		RequiredDocs:    append([]string(nil), rule.requiredDocs...),
		DisclaimerText:  rule.disclaimer,
		ComplianceLevel: rule.level,
	}
	if extra, ok := rule.extraDocs[input.ProductCategory]; ok {
		result.RequiredDocs = append(result.RequiredDocs, extra...)
	}
	if input.DeclaredValueUSD.GreaterThanOrEqual(rule.valueThreshold) {
		result.RequiredDocs = append(result.RequiredDocs, rule.thresholdDocs...)
		result.Flags = append(result.Flags, "high_value")
	}

	held := make(map[string]struct{}, len(input.Certifications))
	for _, cert := range input.Certifications {
		held[strings.ToLower(strings.TrimSpace(cert))] = struct{}{}
	}
	for _, cert := range rule.requiredCerts {
		if _, ok := held[cert]; !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("destination %s expects certification %q", country, cert))
			result.Flags = append(result.Flags, "missing_certification")
		}
	}

	if input.WeightKg.GreaterThan(bulkWeightKg) {
		result.Warnings = append(result.Warnings, "bulk shipment may require freight-forwarder handling")
		result.Flags = append(result.Flags, "bulk_weight")
	}
	if !known {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no specific rule set for destination %s; defaults applied", country))
	}
	return result, nil
}
