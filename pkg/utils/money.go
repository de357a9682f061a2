package utils

import "math"

// ToMinorUnits converts a whole-currency amount to the provider's minor-unit
// integer representation. Rounding to nearest keeps two-decimal inputs exact
// (19.99 -> 1999, never 1998 from float truncation).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
