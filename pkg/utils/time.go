package utils

import "time"

// ParseRFC3339 parses a time string in RFC3339 or RFC3339Nano format.
// Nanosecond precision keeps lexicographic sort-key order aligned
// with chronological order for same-second messages.
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
