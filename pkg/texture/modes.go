package texture

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// AddressingMode determines how texel coordinates outside the canvas are handled
type AddressingMode uint8

const (
	// AddressWrap tiles the texture: each axis is reduced modulo its extent.
	AddressWrap AddressingMode = iota

	// AddressClamp repeats the edge texel indefinitely.
	AddressClamp
)

// String returns a string representation of the addressing mode
func (m AddressingMode) String() string {
	switch m {
	case AddressWrap:
		return "wrap"
	case AddressClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// FilteringMode determines how a continuous coordinate is reconstructed from texels
type FilteringMode uint8

const (
	// FilterNearest returns the single texel containing the coordinate.
	FilterNearest FilteringMode = iota

	// FilterBilinear blends the 2x2 texels around the coordinate.
	FilterBilinear
)

// String returns a string representation of the filtering mode
func (m FilteringMode) String() string {
	switch m {
	case FilterNearest:
		return "nearest"
	case FilterBilinear:
		return "bilinear"
	default:
		return "unknown"
	}
}

// ParseAddressingMode parses an addressing mode name. Matching ignores case;
// "repeat" is accepted as an alias of "wrap".
func ParseAddressingMode(s string) (AddressingMode, error) {
	switch normalizeName(s) {
	case "wrap", "repeat":
		return AddressWrap, nil
	case "clamp", "clamp_to_edge":
		return AddressClamp, nil
	default:
		return 0, fmt.Errorf("unsupported addressing mode %q (expected wrap or clamp)", s)
	}
}

// ParseFilteringMode parses a filtering mode name. Matching ignores case;
// "point" is accepted as an alias of "nearest" and "linear" of "bilinear".
func ParseFilteringMode(s string) (FilteringMode, error) {
	switch normalizeName(s) {
	case "nearest", "point":
		return FilterNearest, nil
	case "bilinear", "linear":
		return FilterBilinear, nil
	default:
		return 0, fmt.Errorf("unsupported filtering mode %q (expected nearest or bilinear)", s)
	}
}

// normalizeName case-folds a mode name. A Caser is stateful, so one is made per call.
func normalizeName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
