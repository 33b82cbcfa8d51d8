package metrics

import (
	"math"
	"testing"
)

func TestRateHelpersZeroDenominator(t *testing.T) {
	tests := []struct {
		name string
		got  float64
	}{
		{"acos", ACOS(50, 0)},
		{"roas", ROAS(100, 0)},
		{"ctr", CTR(10, 0)},
		{"cpc", CPC(10, 0)},
		{"cvr", ConversionRate(3, 0)},
		{"aov", AOV(100, 0)},
		{"pacing", BudgetPacing(50, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != 0 {
				t.Fatalf("expected 0, got %v", tc.got)
			}
			if math.IsNaN(tc.got) || math.IsInf(tc.got, 0) {
				t.Fatalf("expected finite zero, got %v", tc.got)
			}
		})
	}
}

func TestRateHelpers(t *testing.T) {
	if got := ACOS(25, 100); got != 25 {
		t.Fatalf("ACOS = %v, want 25", got)
	}
	if got := ROAS(100, 25); got != 4 {
		t.Fatalf("ROAS = %v, want 4", got)
	}
	if got := CTR(5, 1000); got != 0.5 {
		t.Fatalf("CTR = %v, want 0.5", got)
	}
	if got := CPC(45, 90); got != 0.5 {
		t.Fatalf("CPC = %v, want 0.5", got)
	}
	if got := ConversionRate(5, 50); got != 10 {
		t.Fatalf("ConversionRate = %v, want 10", got)
	}
	if got := AOV(150, 3); got != 50 {
		t.Fatalf("AOV = %v, want 50", got)
	}
	if got := BudgetPacing(15, 20); got != 75 {
		t.Fatalf("BudgetPacing = %v, want 75", got)
	}
}

func TestTotalsAdd(t *testing.T) {
	total := Totals{Impressions: 10, Clicks: 1, Cost: 2, Sales: 3, Orders: 1, Units: 2}
	total.Add(Totals{Impressions: 5, Clicks: 2, Cost: 1.5, Sales: 4, Orders: 2, Units: 1})
	want := Totals{Impressions: 15, Clicks: 3, Cost: 3.5, Sales: 7, Orders: 3, Units: 3}
	if total != want {
		t.Fatalf("Add = %+v, want %+v", total, want)
	}
}

func TestProjectedMonthlySpend(t *testing.T) {
	if got := ProjectedMonthlySpend(10, 31); got != 310 {
		t.Fatalf("projected = %v, want 310", got)
	}
	if got := ProjectedMonthlySpend(10, 0); got != 300 {
		t.Fatalf("projected with default month = %v, want 300", got)
	}
}

func TestBudgetPacingStatus(t *testing.T) {
	// At noon the expected pace is 50%.
	tests := []struct {
		name     string
		pace     float64
		hour     int
		expected string
	}{
		{"on track", 55, 12, PacingOnTrack},
		{"over", 70, 12, PacingOver},
		{"under", 30, 12, PacingUnder},
		{"tolerance edge", 65, 12, PacingOnTrack},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BudgetPacingStatus(tc.pace, tc.hour); got != tc.expected {
				t.Fatalf("status = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestPercentageChange(t *testing.T) {
	if got := PercentageChange(150, 100); got != 50 {
		t.Fatalf("change = %v, want 50", got)
	}
	if got := PercentageChange(50, 100); got != -50 {
		t.Fatalf("change = %v, want -50", got)
	}
	if got := PercentageChange(10, 0); got != 100 {
		t.Fatalf("change from zero = %v, want 100", got)
	}
	if got := PercentageChange(0, 0); got != 0 {
		t.Fatalf("change zero to zero = %v, want 0", got)
	}
}
