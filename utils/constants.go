// File: utils/constants.go
package utils

import "time"

// SessionKeyPrefix is the prefix used for Redis session keys.
const SessionKeyPrefix = "session:"

// SessionActivityKey is the sorted set of session ids scored by last activity.
const SessionActivityKey = "session:activity"

// OutboundCounterPrefix prefixes the per-day outbound call counters.
const OutboundCounterPrefix = "outbound:calls:"

// BookingsDayPrefix prefixes cached bookings-by-date lookups.
const BookingsDayPrefix = "bookings:day:"

// BookingsDayTTL is how long a bookings-by-date lookup stays cached.
const BookingsDayTTL = 60 * time.Second
