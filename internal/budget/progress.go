package budget

import "github.com/shopspring/decimal"

type Status string

const (
	StatusOnTrack    Status = "on-track"
	StatusNearLimit  Status = "near-limit"
	StatusOverBudget Status = "over-budget"
)

// Band thresholds in percent; a value strictly above the threshold enters the band.
const (
	OverBudgetThreshold = 90
	NearLimitThreshold  = 70
)

var hundred = decimal.NewFromInt(100)

type Progress struct {
	Percentage float64
	Status     Status
}

// ProgressOf reports how much of total has been used, capped at 100%.
// A non-positive total yields 0% on-track.
func ProgressOf(used, total decimal.Decimal) Progress {
	if !total.IsPositive() {
		return Progress{Status: StatusOnTrack}
	}

	pct := used.Div(total).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}

	return Progress{
		Percentage: pct.InexactFloat64(),
		Status:     statusOf(pct),
	}
}

func statusOf(pct decimal.Decimal) Status {
	switch {
	case pct.GreaterThan(decimal.NewFromInt(OverBudgetThreshold)):
		return StatusOverBudget
	case pct.GreaterThan(decimal.NewFromInt(NearLimitThreshold)):
		return StatusNearLimit
	default:
		return StatusOnTrack
	}
}
