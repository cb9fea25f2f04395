// Package numbering generates human-readable display numbers for
// RFQs, quotes, and orders. Display numbers are for people; records
// are always addressed by uuid.
package numbering

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	rfqPrefix   = "RFQ"
	quotePrefix = "QT"
	orderPrefix = "ORD"

	suffixBytes = 3
)

// NewRFQNumber returns a display number like RFQ-20260826-1A2B3C.
func NewRFQNumber(now time.Time) string {
	return build(rfqPrefix, now)
}

// NewQuoteNumber returns a display number like QT-20260826-1A2B3C.
func NewQuoteNumber(now time.Time) string {
	return build(quotePrefix, now)
}

// NewOrderNumber returns a display number like ORD-20260826-1A2B3C.
func NewOrderNumber(now time.Time) string {
	return build(orderPrefix, now)
}

func build(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), randomSuffix())
}

func randomSuffix() string {
	buf := make([]byte, suffixBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return strings.ToUpper(fmt.Sprintf("%06x", time.Now().UnixNano()&0xFFFFFF))
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
