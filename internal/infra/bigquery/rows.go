package bigquery

import (
	"math/big"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/statementlab/bankparse/internal/model"
)

const (
	runsTable         = "parse_runs"
	transactionsTable = "transactions"
)

type ParseRunRow struct {
	RunID     string `bigquery:"run_id"`     // REQUIRED
	SourceURI string `bigquery:"source_uri"` // NULLABLE

	BankName            string `bigquery:"bank_name"`             // NULLABLE
	AccountHolderName   string `bigquery:"account_holder_name"`   // NULLABLE
	AccountNumberMasked string `bigquery:"account_number_masked"` // NULLABLE
	StatementMonth      string `bigquery:"statement_month"`       // NULLABLE
	AccountType         string `bigquery:"account_type"`          // NULLABLE
	Currency            string `bigquery:"currency"`              // NULLABLE

	OpeningBalance      *big.Rat `bigquery:"opening_balance"`       // NUMERIC, NULLABLE
	ClosingBalance      *big.Rat `bigquery:"closing_balance"`       // NUMERIC, NULLABLE
	TotalCredits        *big.Rat `bigquery:"total_credits"`         // NUMERIC, NULLABLE
	TotalDebits         *big.Rat `bigquery:"total_debits"`          // NUMERIC, NULLABLE
	AverageDailyBalance *big.Rat `bigquery:"average_daily_balance"` // NUMERIC, NULLABLE

	OverdraftCount int64 `bigquery:"overdraft_count"` // NULLABLE
	NSFCount       int64 `bigquery:"nsf_count"`       // NULLABLE

	TextSource string   `bigquery:"text_source"` // NULLABLE
	Warnings   []string `bigquery:"warnings"`    // REPEATED STRING
	Insights   []string `bigquery:"insights"`    // REPEATED STRING

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	RunID         string `bigquery:"run_id"`         // REQUIRED

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"` // DATE, NULLABLE

	Description string   `bigquery:"description"`   // REQUIRED STRING
	Amount      *big.Rat `bigquery:"amount"`        // REQUIRED NUMERIC
	Balance     *big.Rat `bigquery:"balance_after"` // NUMERIC, NULLABLE
	Category    string   `bigquery:"category"`      // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// NewParseRunRow flattens a finished parsing result into a row. The returned
// run_id links the transaction rows built by NewTransactionRows.
func NewParseRunRow(sourceURI string, res *model.Result) *ParseRunRow {
	st := res.Fields
	row := &ParseRunRow{
		RunID:               uuid.NewString(),
		SourceURI:           sourceURI,
		BankName:            st.Fields.BankName,
		AccountHolderName:   st.Fields.AccountHolderName,
		AccountNumberMasked: st.Fields.AccountNumberMasked,
		StatementMonth:      st.Fields.StatementMonth,
		AccountType:         st.Fields.AccountType,
		Currency:            st.Fields.Currency,
		OpeningBalance:      st.Summary.OpeningBalance.Rat(),
		ClosingBalance:      st.Summary.ClosingBalance.Rat(),
		TotalCredits:        st.Summary.TotalCredits.Rat(),
		TotalDebits:         st.Summary.TotalDebits.Rat(),
		OverdraftCount:      int64(st.Summary.OverdraftCount),
		NSFCount:            int64(st.Summary.NSFCount),
		TextSource:          res.Quality.TextSource,
		Warnings:            res.Quality.Warnings,
		Insights:            res.Insights,
		CreatedTS:           time.Now().UTC(),
	}
	if st.Summary.AverageDailyBalance != nil {
		row.AverageDailyBalance = st.Summary.AverageDailyBalance.Rat()
	}
	return row
}

// NewTransactionRows builds one row per statement line. Dates that do not
// parse as YYYY-MM-DD are stored as NULL rather than dropped.
func NewTransactionRows(runID string, txs []model.Transaction) []*TransactionRow {
	now := time.Now().UTC()
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		row := &TransactionRow{
			TransactionID: uuid.NewString(),
			RunID:         runID,
			Description:   tx.Description,
			Amount:        tx.Amount.Rat(),
			Category:      tx.Category,
			CreatedTS:     now,
		}
		if d, err := civil.ParseDate(strings.TrimSpace(tx.Date)); err == nil {
			row.TransactionDate = bigquery.NullDate{Date: d, Valid: true}
		}
		if tx.Balance != nil {
			row.Balance = tx.Balance.Rat()
		}
		rows = append(rows, row)
	}
	return rows
}
