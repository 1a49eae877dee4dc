package exchange

import "testing"

func TestParseOrderSide(t *testing.T) {
	tests := []struct {
		in   string
		want OrderSide
	}{
		{"LONG", SideLong},
		{"long", SideLong},
		{"Buy", SideLong},
		{"SHORT", SideShort},
		{"sell", SideShort},
	}
	for _, tc := range tests {
		got, err := ParseOrderSide(tc.in)
		if err != nil {
			t.Errorf("ParseOrderSide(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseOrderSide(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseOrderSide("hold"); err == nil {
		t.Error("expected error for unknown side")
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want Interval
	}{
		{"1", Interval1m},
		{"1m", Interval1m},
		{"15min", Interval15m},
		{"60", Interval1h},
		{"1h", Interval1h},
		{"D", Interval1d},
	}
	for _, tc := range tests {
		got, err := ParseInterval(tc.in)
		if err != nil {
			t.Errorf("ParseInterval(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseInterval(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseInterval("7m"); err == nil {
		t.Error("expected error for unsupported interval")
	}
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory("Linear")
	if err != nil || got != CategoryLinear {
		t.Errorf("ParseCategory(Linear) = %s, %v", got, err)
	}
	if _, err := ParseCategory("margin"); err == nil {
		t.Error("expected error for unsupported category")
	}
}
