package utils

import "time"

// SameInstant compares optional timestamps; two nils are equal.
func SameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// FormatRFC3339 renders an optional timestamp in UTC, or "" when absent.
func FormatRFC3339(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
