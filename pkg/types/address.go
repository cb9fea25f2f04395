package types

import "strings"

// Address is the shipping destination snapshot stored on orders and
// supplied at quote acceptance. Persisted as jsonb.
type Address struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	Region     *string `json:"region,omitempty"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// Validate reports the first missing required field, or "".
func (a Address) Validate() string {
	if strings.TrimSpace(a.Line1) == "" {
		return "line1"
	}
	if strings.TrimSpace(a.City) == "" {
		return "city"
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		return "postal_code"
	}
	if strings.TrimSpace(a.Country) == "" {
		return "country"
	}
	return ""
}
