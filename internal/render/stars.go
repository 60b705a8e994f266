// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render formats ranked digests for people: an HTML page for
// mail and a table for the terminal.
package render

import (
	"math"
	"strings"
)

// Relevance scores map onto zero to five stars in half-star steps
// between StarLow and StarHigh.
const (
	StarLow  = 6.0
	StarHigh = 8.0
	maxStars = 5
)

// Stars converts a relevance score into a star count in half-star steps:
// 0 at or below StarLow, 5 at or above StarHigh.
func Stars(score float64) float64 {
	switch {
	case score <= StarLow:
		return 0
	case score >= StarHigh:
		return maxStars
	}
	interval := (StarHigh - StarLow) / (2 * maxStars)
	halves := math.Ceil((score - StarLow) / interval)
	return halves / 2
}

// StarString renders a star count as text, with "½" for a half star.
func StarString(stars float64) string {
	full := int(stars)
	s := strings.Repeat("★", full)
	if stars-float64(full) >= 0.5 {
		s += "½"
	}
	return s
}

// Authors joins up to five names, appending ", ..." when there are more.
func Authors(names []string) string {
	const limit = 5
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:limit], ", ") + ", ..."
}
