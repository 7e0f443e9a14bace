// Package validation checks values that come from outside the match core
// before they reach it.
package validation

import (
	"fmt"
	"math"
	"unicode"
)

const (
	MaxNameLength = 16
	// MaxCoordinate bounds world positions accepted from the host.
	MaxCoordinate = 30_000_000.0
	MaxDamage     = 1_000_000.0
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func IsValidCoordinate(x, z float64) bool {
	if !isFinite(x) || !isFinite(z) {
		return false
	}
	return math.Abs(x) <= MaxCoordinate && math.Abs(z) <= MaxCoordinate
}

func IsValidDamage(amount float64) bool {
	return isFinite(amount) && amount >= 0 && amount <= MaxDamage
}

// ValidateName accepts 1 to 16 letters, digits or underscores.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name %q is longer than %d characters", name, MaxNameLength)
	}
	for _, r := range name {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("name %q contains %q", name, r)
		}
	}
	return nil
}
