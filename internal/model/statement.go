// Package model defines the parsed bank statement structures shared by the
// extraction pipeline, the reconciliation checks and the API layer.
package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Fields holds the account-level metadata extracted from a statement.
type Fields struct {
	BankName            string `json:"bank_name"`
	AccountHolderName   string `json:"account_holder_name"`
	AccountNumberMasked string `json:"account_number_masked"`
	StatementMonth      string `json:"statement_month"`
	AccountType         string `json:"account_type"`
	Currency            string `json:"currency"`
}

// Summary holds the statement-level totals. All money values share the
// statement currency and are reported with 2 fractional digits.
type Summary struct {
	OpeningBalance      decimal.Decimal  `json:"opening_balance"`
	ClosingBalance      decimal.Decimal  `json:"closing_balance"`
	TotalCredits        decimal.Decimal  `json:"total_credits"`
	TotalDebits         decimal.Decimal  `json:"total_debits"`
	AverageDailyBalance *decimal.Decimal `json:"average_daily_balance"`
	OverdraftCount      int              `json:"overdraft_count"`
	NSFCount            int              `json:"nsf_count"`
}

// Transaction is one statement line. Amount is signed: credits positive,
// debits negative. Balance is the running balance after the transaction and
// may be absent when the statement does not print one.
//
// Date is kept as the ISO string the extractor produced; consumers that need
// a calendar date parse it themselves and decide how to handle bad values.
type Transaction struct {
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Category    string           `json:"category,omitempty"`
}

// Statement is the structured output of the extraction collaborator.
type Statement struct {
	Fields       Fields        `json:"fields"`
	Summary      Summary       `json:"summary"`
	Transactions []Transaction `json:"transactions"`
}

// PageMeta records how a single page was processed.
type PageMeta struct {
	Page            int    `json:"page"`
	Source          string `json:"source,omitempty"`
	RotationApplied bool   `json:"rotation_applied"`
	RotationAngle   int    `json:"rotation_angle,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Quality carries diagnostics for the UI alongside the parsed data.
type Quality struct {
	Pages      []PageMeta `json:"pages,omitempty"`
	Warnings   []string   `json:"warnings"`
	TextSource string     `json:"text_source"`
}

// Result is the final structured output of one parsing run.
type Result struct {
	Fields   Statement `json:"fields"`
	Insights []string  `json:"insights"`
	Quality  Quality   `json:"quality"`
}

// MaskAccountNumber keeps the last four digits of an account number and
// replaces the rest with asterisks. Non-digit characters are discarded.
// Four digits or fewer are returned as-is; an empty input stays empty.
func MaskAccountNumber(acct string) string {
	var digits strings.Builder
	for _, r := range acct {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) <= 4 {
		return d
	}
	return strings.Repeat("*", len(d)-4) + d[len(d)-4:]
}
