package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseMarketValue converts catalog strings like "€1.5m", "€500k" or "€750,000" to currency units.
// An empty value is worth nothing.
func ParseMarketValue(raw string) (int64, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer("€", "", ",", "").Replace(v)
	if v == "" || v == "-" {
		return 0, nil
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(v, "bn"):
		mult, v = 1e9, strings.TrimSuffix(v, "bn")
	case strings.HasSuffix(v, "m"):
		mult, v = 1e6, strings.TrimSuffix(v, "m")
	case strings.HasSuffix(v, "k"):
		mult, v = 1e3, strings.TrimSuffix(v, "k")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("invalid market value %q", raw)
	}
	amount := math.Round(f * mult)
	if amount >= math.MaxInt64 {
		return 0, fmt.Errorf("market value %q out of range", raw)
	}
	return int64(amount), nil
}

// FormatCurrency renders an amount the way market values are displayed.
func FormatCurrency(amount int64) string {
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("€%.1fm", float64(amount)/1e6)
	case amount >= 1_000:
		return fmt.Sprintf("€%.0fk", float64(amount)/1e3)
	default:
		return fmt.Sprintf("€%d", amount)
	}
}
