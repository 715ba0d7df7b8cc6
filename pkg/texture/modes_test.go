package texture

import "testing"

func TestParseAddressingMode(t *testing.T) {
	tests := []struct {
		input       string
		expected    AddressingMode
		expectError bool
	}{
		{"wrap", AddressWrap, false},
		{"Wrap", AddressWrap, false},
		{"REPEAT", AddressWrap, false},
		{" clamp ", AddressClamp, false},
		{"clamp_to_edge", AddressClamp, false},
		{"mirror", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAddressingMode(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseFilteringMode(t *testing.T) {
	tests := []struct {
		input       string
		expected    FilteringMode
		expectError bool
	}{
		{"nearest", FilterNearest, false},
		{"Point", FilterNearest, false},
		{"bilinear", FilterBilinear, false},
		{"LINEAR", FilterBilinear, false},
		{"trilinear", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFilteringMode(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestModeStringsRoundTrip(t *testing.T) {
	for _, m := range []AddressingMode{AddressWrap, AddressClamp} {
		got, err := ParseAddressingMode(m.String())
		if err != nil || got != m {
			t.Errorf("addressing mode %v did not round trip: %v, %v", m, got, err)
		}
	}
	for _, m := range []FilteringMode{FilterNearest, FilterBilinear} {
		got, err := ParseFilteringMode(m.String())
		if err != nil || got != m {
			t.Errorf("filtering mode %v did not round trip: %v, %v", m, got, err)
		}
	}
	for _, c := range []ColorSpace{ColorSpaceLinearRGB, ColorSpaceSRGB} {
		got, err := ParseColorSpace(c.String())
		if err != nil || got != c {
			t.Errorf("color space %v did not round trip: %v, %v", c, got, err)
		}
	}
}
