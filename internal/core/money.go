// Package core provides money parsing and handling utilities.
//
// This file contains the coercion rules applied to the entry form: quantity and
// price fields default to zero when left empty and are otherwise parsed strictly.
package core

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumber is returned when a numeric form field cannot be parsed.
var ErrInvalidNumber = errors.New("invalid number")

// ParseQuantity converts a form value to a whole quantity.
//
// Empty input yields 0. Negative values parse successfully and are rejected
// later by NewItem.Validate.
//
// Examples:
//
//	ParseQuantity("")   -> 0, nil
//	ParseQuantity(" 5") -> 5, nil
//	ParseQuantity("1.5") -> 0, ErrInvalidNumber
func ParseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return q, nil
}

// ParsePrice converts a form value to a decimal price.
//
// It accepts both dot (2.50) and comma (2,50) decimal separators and an
// optional leading pound sign. Empty input yields 0.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "£")
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidNumber
	}
	return d, nil
}

// FormatPounds renders an amount with two decimals, e.g. "£12.50".
func FormatPounds(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-£" + d.Neg().StringFixed(2)
	}
	return "£" + d.StringFixed(2)
}
