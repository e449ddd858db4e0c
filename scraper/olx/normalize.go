package olx

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// GetNumber keeps only decimal digits, commas and dots from s, in order.
// It does not check that the result is a valid number.
//
//	"100 000 €"  → "100000"
//	"54,5 m²"    → "54,5"
func GetNumber(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsDigit(r) || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeSurface strips a raw surface text to its number and converts the
// locale decimal comma to a dot.
func NormalizeSurface(raw string) string {
	return strings.ReplaceAll(GetNumber(raw), ",", ".")
}

// ParsePrice turns a raw price text into a number.
func ParsePrice(raw string) (float64, error) {
	n := GetNumber(raw)
	if n == "" {
		return 0, extractionErr("price", fmt.Errorf("no digits in %q", raw))
	}
	v, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, extractionErr("price", fmt.Errorf("%q is not a number", n))
	}
	return v, nil
}

// ParseSurface normalizes a raw surface text and parses it.
func ParseSurface(raw string) (string, float64, error) {
	s := NormalizeSurface(raw)
	if s == "" {
		return "", 0, extractionErr("surface", fmt.Errorf("no digits in %q", raw))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", 0, extractionErr("surface", fmt.Errorf("%q is not a number", s))
	}
	return s, v, nil
}

// PricePerSqm returns price / surface rounded half to even, so exact halves
// go to the even neighbour: 2.5 → 2, 3.5 → 4. The surface may carry units
// and a decimal comma; the price must already be numeric text.
func PricePerSqm(surface, price string) (int64, error) {
	_, area, err := ParseSurface(surface)
	if err != nil {
		return 0, err
	}
	p, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return 0, extractionErr("price", fmt.Errorf("%q is not a number", price))
	}
	return sqmPrice(p, area)
}

func sqmPrice(price, area float64) (int64, error) {
	if area == 0 {
		return 0, extractionErr("surface", errors.New("surface is zero"))
	}
	v := math.RoundToEven(price / area)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, extractionErr("sqm_price", fmt.Errorf("%v / %v is not finite", price, area))
	}
	return int64(v), nil
}
