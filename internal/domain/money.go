package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePrice converts a decimal price string ("19.99") into cents.
// Empty input parses to zero, matching how the storefront treats
// missing prices.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return int64(math.Round(f * 100)), nil
}

// FormatCents renders cents as a two-decimal string without a currency sign.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// TaxCents computes the tax on a subtotal, rounded to the nearest cent.
func TaxCents(subtotalCents int64, rate float64) int64 {
	return int64(math.Round(float64(subtotalCents) * rate))
}
