package projection

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyPosition is the cash position for a single day in the forecast
type DailyPosition struct {
	Date           time.Time       `json:"date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Inflows        decimal.Decimal `json:"inflows"`
	Outflows       decimal.Decimal `json:"outflows"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// DailyPositions rolls projections forward day by day over [from, until].
// Each day's closing balance is opening + inflows - outflows and carries
// into the next day's opening. Cancelled projections are excluded.
// Full precision is kept; rounding happens at presentation.
func DailyPositions(opening decimal.Decimal, projections []Projection, from, until time.Time) []DailyPosition {
	from = truncateToDay(from)
	until = truncateToDay(until)
	if until.Before(from) {
		return nil
	}

	inflowsByDay := make(map[time.Time]decimal.Decimal)
	outflowsByDay := make(map[time.Time]decimal.Decimal)
	for i := range projections {
		p := &projections[i]
		if p.Status == StatusCancelled {
			continue
		}
		day := truncateToDay(p.ProjectionDate)
		if day.Before(from) || day.After(until) {
			continue
		}
		if p.ProjectedAmount.IsNegative() {
			outflowsByDay[day] = outflowsByDay[day].Add(p.ProjectedAmount.Abs())
		} else {
			inflowsByDay[day] = inflowsByDay[day].Add(p.ProjectedAmount)
		}
	}

	var positions []DailyPosition
	balance := opening
	for day := from; !day.After(until); day = day.AddDate(0, 0, 1) {
		inflows := inflowsByDay[day]
		outflows := outflowsByDay[day]
		closing := balance.Add(inflows).Sub(outflows)
		positions = append(positions, DailyPosition{
			Date:           day,
			OpeningBalance: balance,
			Inflows:        inflows,
			Outflows:       outflows,
			ClosingBalance: closing,
		})
		balance = closing
	}
	return positions
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
