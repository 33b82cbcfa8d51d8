// Package metrics holds the shared performance math for the reporting layer.
// Every rate helper treats a zero denominator as zero output, never NaN or an
// error; callers rely on that convention throughout the dashboard.
package metrics

// Totals is the additive metric tuple summed during aggregation.
type Totals struct {
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`
	Cost        float64 `json:"cost"`
	Sales       float64 `json:"sales"`
	Orders      int     `json:"orders"`
	Units       int     `json:"units"`
}

// Add folds another tuple into the receiver.
func (t *Totals) Add(other Totals) {
	t.Impressions += other.Impressions
	t.Clicks += other.Clicks
	t.Cost += other.Cost
	t.Sales += other.Sales
	t.Orders += other.Orders
	t.Units += other.Units
}

// ACOS is advertising cost of sales: spend / sales * 100.
func ACOS(cost, sales float64) float64 {
	if sales == 0 {
		return 0
	}
	return cost / sales * 100
}

// ROAS is return on ad spend: sales / spend.
func ROAS(sales, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return sales / cost
}

// CTR is click-through rate: clicks / impressions * 100.
func CTR(clicks, impressions int) float64 {
	if impressions == 0 {
		return 0
	}
	return float64(clicks) / float64(impressions) * 100
}

// CPC is cost per click: spend / clicks.
func CPC(cost float64, clicks int) float64 {
	if clicks == 0 {
		return 0
	}
	return cost / float64(clicks)
}

// ConversionRate is orders / clicks * 100.
func ConversionRate(orders, clicks int) float64 {
	if clicks == 0 {
		return 0
	}
	return float64(orders) / float64(clicks) * 100
}

// AOV is average order value: sales / orders.
func AOV(sales float64, orders int) float64 {
	if orders == 0 {
		return 0
	}
	return sales / float64(orders)
}

// BudgetPacing is spend as a percentage of budget.
func BudgetPacing(spent, budget float64) float64 {
	if budget == 0 {
		return 0
	}
	return spent / budget * 100
}

// ProjectedMonthlySpend extrapolates current daily spend across a month.
func ProjectedMonthlySpend(dailySpend float64, daysInMonth int) float64 {
	if daysInMonth <= 0 {
		daysInMonth = 30
	}
	return dailySpend * float64(daysInMonth)
}

// PacingStatus values returned by BudgetPacingStatus.
const (
	PacingOnTrack = "on-track"
	PacingOver    = "over-pacing"
	PacingUnder   = "under-pacing"
)

// pacingTolerance is the allowed deviation from expected pace, in points.
const pacingTolerance = 15.0

// BudgetPacingStatus compares actual pace against the pace expected for the
// hour of day, with a fixed tolerance band.
func BudgetPacingStatus(pacePercentage float64, hourOfDay int) string {
	expected := float64(hourOfDay) / 24 * 100
	switch {
	case pacePercentage > expected+pacingTolerance:
		return PacingOver
	case pacePercentage < expected-pacingTolerance:
		return PacingUnder
	default:
		return PacingOnTrack
	}
}

// PercentageChange returns the relative change from previous to current. A
// zero previous value yields 100 when current is positive, else 0.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
