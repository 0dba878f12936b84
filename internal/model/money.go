package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTotal indicates a total-cost input that does not contain a
// parseable number.
var ErrInvalidTotal = errors.New("total cost must be a valid number")

// ParseTotal sanitizes a raw monetary input: every character other than
// digits and decimal points is stripped, extra decimal points after the
// first are removed, and the result is parsed and rounded half-up to two
// decimal places. Input that still fails to parse is a validation error,
// never a silent zero.
func ParseTotal(raw string) (float64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	numeric := b.String()

	if parts := strings.Split(numeric, "."); len(parts) > 2 {
		numeric = parts[0] + "." + strings.Join(parts[1:], "")
	}

	v, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTotal, raw)
	}

	return RoundCents(v), nil
}

// RoundCents rounds a non-negative amount half-up to two decimal places.
func RoundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
