package recon

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/statementlab/bankparse/internal/model"
)

// balancePoint is one usable (date, running balance) observation.
type balancePoint struct {
	date    civil.Date
	balance decimal.Decimal
}

// AverageDailyBalance computes the time-weighted average balance over the
// statement period, inclusive of both endpoints, rounded to 2 places.
//
// Each running balance is weighted by the number of days until the next
// observation (at least 1, so same-day entries still carry weight), and the
// final balance is added once for the closing day. Transactions without a
// parsable ISO date or without a running balance are skipped; if nothing
// usable remains, the opening balance is returned unchanged.
func AverageDailyBalance(txs []model.Transaction, opening decimal.Decimal) decimal.Decimal {
	if len(txs) == 0 {
		return opening
	}

	points := make([]balancePoint, 0, len(txs))
	for _, tx := range txs {
		if tx.Balance == nil {
			continue
		}
		d, err := civil.ParseDate(strings.TrimSpace(tx.Date))
		if err != nil {
			continue
		}
		points = append(points, balancePoint{date: d, balance: *tx.Balance})
	}
	if len(points) == 0 {
		return opening
	}

	// Stable keeps the original order for same-date entries, so the last
	// extracted balance of a day is the one that carries into the next gap.
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].date.Before(points[j].date)
	})

	totalDays := points[len(points)-1].date.DaysSince(points[0].date) + 1

	accumulated := decimal.Zero
	prev := points[0]
	for _, p := range points[1:] {
		days := p.date.DaysSince(prev.date)
		if days < 1 {
			days = 1
		}
		accumulated = accumulated.Add(prev.balance.Mul(decimal.NewFromInt(int64(days))))
		prev = p
	}
	// The last known balance persists through the final day of the span.
	accumulated = accumulated.Add(prev.balance)

	return accumulated.Div(decimal.NewFromInt(int64(totalDays))).Round(2)
}
