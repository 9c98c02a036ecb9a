package utils

import (
	"strconv"
	"strings"
)

// BuildBillboardCacheKey derives a stable cache key for the public billboard
// listing from its filter set. Keys are versioned so a shape change can
// invalidate old entries by bumping the prefix.
func BuildBillboardCacheKey(limit, offset int, city, genre *string) string {
	c := ""
	if city != nil {
		c = strings.ToLower(strings.TrimSpace(*city))
	}
	g := ""
	if genre != nil {
		g = strings.ToLower(strings.TrimSpace(*genre))
	}

	return "billboard:v1:limit=" + strconv.Itoa(limit) +
		":offset=" + strconv.Itoa(offset) +
		":city=" + c +
		":genre=" + g
}
