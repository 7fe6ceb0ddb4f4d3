package bigquery

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementlab/bankparse/internal/model"
)

func TestNewParseRunRow(t *testing.T) {
	adb := decimal.NewFromInt(68650)
	res := &model.Result{
		Fields: model.Statement{
			Fields: model.Fields{
				BankName:            "State Bank of India",
				AccountNumberMasked: "********9272",
				Currency:            "INR",
			},
			Summary: model.Summary{
				OpeningBalance:      decimal.NewFromInt(42000),
				ClosingBalance:      decimal.NewFromInt(38500),
				AverageDailyBalance: &adb,
			},
		},
		Insights: []string{"ok"},
		Quality:  model.Quality{TextSource: "PDF Extracted Text", Warnings: []string{}},
	}

	row := NewParseRunRow("gs://b/stmt.pdf", res)

	assert.NotEmpty(t, row.RunID)
	assert.Equal(t, "gs://b/stmt.pdf", row.SourceURI)
	assert.Equal(t, "********9272", row.AccountNumberMasked)
	assert.Equal(t, 0, row.OpeningBalance.Cmp(big.NewRat(42000, 1)))
	require.NotNil(t, row.AverageDailyBalance)
	assert.Equal(t, 0, row.AverageDailyBalance.Cmp(big.NewRat(68650, 1)))
	assert.False(t, row.CreatedTS.IsZero())
}

func TestNewTransactionRows(t *testing.T) {
	bal := decimal.NewFromInt(500)
	rows := NewTransactionRows("run-1", []model.Transaction{
		{Date: "2025-09-01", Description: "SALARY", Amount: decimal.NewFromInt(30000), Balance: &bal},
		{Date: "not-a-date", Description: "FEE", Amount: decimal.NewFromInt(-50)},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.True(t, rows[0].TransactionDate.Valid)
	assert.Equal(t, "2025-09-01", rows[0].TransactionDate.Date.String())
	require.NotNil(t, rows[0].Balance)

	assert.False(t, rows[1].TransactionDate.Valid, "bad date stored as NULL")
	assert.Nil(t, rows[1].Balance)
}
