// Package utils holds tiny helpers with no knowledge of the domain.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as a base-10 integer, tolerating surrounding
// whitespace. Empty or unparseable input yields def. Intended for query
// parameters, where a bad value should fall back rather than error.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// ClampInt bounds n to the inclusive range [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
