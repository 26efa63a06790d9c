package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record id prefixes.
const (
	BookingIDPrefix  = "BOOK"
	LeadIDPrefix     = "LEAD"
	CustomerIDPrefix = "CUST"
	CallIDPrefix     = "CALL"
)

// NewRecordID returns a time-based id such as BOOK-20251016143000-1a2b3c.
// The short random suffix keeps ids unique within the same second.
func NewRecordID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return prefix + "-" + now.Format("20060102150405") + "-" + suffix
}
