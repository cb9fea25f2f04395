package enums

import "fmt"

// Incoterm is the standardized trade term allocating shipping and customs
// responsibility between buyer and seller.
type Incoterm string

const (
	IncotermEXW Incoterm = "EXW"
	IncotermFOB Incoterm = "FOB"
	IncotermCFR Incoterm = "CFR"
	IncotermCIF Incoterm = "CIF"
	IncotermDAP Incoterm = "DAP"
	IncotermDDP Incoterm = "DDP"
)

var validIncoterms = []Incoterm{
	IncotermEXW,
	IncotermFOB,
	IncotermCFR,
	IncotermCIF,
	IncotermDAP,
	IncotermDDP,
}

// String implements fmt.Stringer.
func (i Incoterm) String() string {
	return string(i)
}

// IsValid reports whether the value is a known Incoterm.
func (i Incoterm) IsValid() bool {
	for _, candidate := range validIncoterms {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIncoterm converts raw input into an Incoterm.
func ParseIncoterm(value string) (Incoterm, error) {
	for _, candidate := range validIncoterms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid incoterm %q", value)
}
