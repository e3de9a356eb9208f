package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SelectionRow is one product/count pair submitted for a BOQ product group.
// Count is left untyped because the legacy dashboard posted counts as
// strings; decoding keeps whatever JSON delivered and ParseCount sorts it out.
type SelectionRow struct {
	Product string `json:"product"`
	Count   any    `json:"count"`
}

// SelectionItem is a normalized, validated selection row.
type SelectionItem struct {
	Product string
	Count   int
}

// IsBlank reports whether the row carries neither a product nor a count.
// Blank rows come from "add row" clicks that were never filled in and are
// skipped rather than rejected.
func (r SelectionRow) IsBlank() bool {
	if strings.TrimSpace(r.Product) != "" {
		return false
	}
	switch v := r.Count.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case float64:
		return v == 0
	case json.Number:
		return v.String() == "" || v.String() == "0"
	default:
		return false
	}
}

// ParseCount converts a submitted count into a positive integer. The legacy
// dashboard coerced bad input with Number(x) || 0, which let NaN counts reach
// the backend in some flows; here anything non-numeric, fractional, or not
// strictly positive is a hard error.
func ParseCount(v any) (int, error) {
	switch val := v.(type) {
	case float64:
		return countFromFloat(val)
	case int:
		if val <= 0 {
			return 0, fmt.Errorf("count must be a positive integer, got %d", val)
		}
		return val, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("count %q is not a number", val.String())
		}
		return countFromFloat(f)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, fmt.Errorf("count is required")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("count %q is not a number", s)
		}
		return countFromFloat(f)
	case nil:
		return 0, fmt.Errorf("count is required")
	default:
		return 0, fmt.Errorf("count has unsupported type %T", v)
	}
}

func countFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("count is not a finite number")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("count must be a whole number, got %v", f)
	}
	if f <= 0 {
		return 0, fmt.Errorf("count must be a positive integer, got %v", f)
	}
	return int(f), nil
}

// NormalizeSelection filters blank rows out of one product group's selection
// and validates the rest. Row numbers in returned errors are 1-indexed
// within the group.
func NormalizeSelection(group string, rows []SelectionRow) ([]SelectionItem, []ValidationError) {
	var items []SelectionItem
	var errs []ValidationError

	for i, row := range rows {
		if row.IsBlank() {
			continue
		}

		if strings.TrimSpace(row.Product) == "" {
			errs = append(errs, ValidationError{
				Row:     i + 1,
				Field:   group,
				Message: "product reference is required",
			})
			continue
		}

		count, err := ParseCount(row.Count)
		if err != nil {
			errs = append(errs, ValidationError{
				Row:     i + 1,
				Field:   group,
				Message: err.Error(),
			})
			continue
		}

		items = append(items, SelectionItem{
			Product: strings.TrimSpace(row.Product),
			Count:   count,
		})
	}

	return items, errs
}
