// Package recon implements the deterministic reconciliation checks that run
// over an extracted statement: balance consistency, duplicate counting and the
// time-weighted average daily balance. All functions are pure and degrade to
// an advisory result instead of failing; the caller decides what to do with
// the warnings they return.
package recon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/statementlab/bankparse/internal/model"
)

// balanceTolerance is the absolute mismatch allowed between the computed and
// the reported closing balance: one currency unit, enough to absorb rounding
// noise in extracted totals.
var balanceTolerance = decimal.NewFromInt(1)

// ValidateBalances checks that opening + credits - debits matches the closing
// balance within tolerance. Missing numeric fields act as zero. It returns a
// list of human-readable warnings, empty when the summary is consistent, and
// never panics: an internal numeric error comes back as a warning instead.
func ValidateBalances(s model.Summary) (warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			warnings = []string{fmt.Sprintf("Balance validation error: %v", r)}
		}
	}()

	calc := s.OpeningBalance.Add(s.TotalCredits).Sub(s.TotalDebits).Round(2)
	if calc.Sub(s.ClosingBalance).Abs().GreaterThan(balanceTolerance) {
		warnings = append(warnings, fmt.Sprintf(
			"Balance mismatch: opening(%s) + credits(%s) - debits(%s) = %s, but closing = %s.",
			s.OpeningBalance.StringFixed(2),
			s.TotalCredits.StringFixed(2),
			s.TotalDebits.StringFixed(2),
			calc.StringFixed(2),
			s.ClosingBalance.StringFixed(2),
		))
	}
	return warnings
}
