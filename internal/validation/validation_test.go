package validation

import (
	"math"
	"testing"
)

func TestValidateName(t *testing.T) {
	for _, name := range []string{"alice", "Bob_2", "x"} {
		if err := ValidateName(name); err != nil {
			t.Fatalf("%q rejected: %v", name, err)
		}
	}
	for _, name := range []string{"", "has space", "semi;colon", "abcdefghijklmnopq"} {
		if err := ValidateName(name); err == nil {
			t.Fatalf("%q accepted", name)
		}
	}
}

func TestNumericChecks(t *testing.T) {
	if !IsValidCoordinate(-120.5, 4e6) || IsValidCoordinate(math.NaN(), 0) || IsValidCoordinate(0, math.Inf(1)) || IsValidCoordinate(4e7, 0) {
		t.Fatalf("coordinate checks wrong")
	}
	if !IsValidDamage(0) || !IsValidDamage(12.5) || IsValidDamage(-1) || IsValidDamage(math.NaN()) {
		t.Fatalf("damage checks wrong")
	}
}
