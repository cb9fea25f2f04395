package enums

import "fmt"

// RFQStatus tracks a request-for-quotation through the negotiation lifecycle.
type RFQStatus string

const (
	RFQStatusDraft           RFQStatus = "draft"
	RFQStatusSubmitted       RFQStatus = "submitted"
	RFQStatusPartiallyQuoted RFQStatus = "partially_quoted"
	RFQStatusQuoted          RFQStatus = "quoted"
	RFQStatusAccepted        RFQStatus = "accepted"
	RFQStatusExpired         RFQStatus = "expired"
	RFQStatusCancelled       RFQStatus = "cancelled"
)

var validRFQStatuses = []RFQStatus{
	RFQStatusDraft,
	RFQStatusSubmitted,
	RFQStatusPartiallyQuoted,
	RFQStatusQuoted,
	RFQStatusAccepted,
	RFQStatusExpired,
	RFQStatusCancelled,
}

// OpenForQuoting reports whether sellers may still submit quotes.
func (r RFQStatus) OpenForQuoting() bool {
	switch r {
	case RFQStatusSubmitted, RFQStatusPartiallyQuoted, RFQStatusQuoted:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (r RFQStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RFQStatus.
func (r RFQStatus) IsValid() bool {
	for _, candidate := range validRFQStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRFQStatus converts raw input into an RFQStatus.
func ParseRFQStatus(value string) (RFQStatus, error) {
	for _, candidate := range validRFQStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rfq status %q", value)
}
