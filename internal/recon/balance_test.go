package recon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statementlab/bankparse/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateBalances_Consistent(t *testing.T) {
	s := model.Summary{
		OpeningBalance: dec("42000"),
		ClosingBalance: dec("38500"),
		TotalCredits:   dec("30000"),
		TotalDebits:    dec("33500"),
	}
	assert.Empty(t, ValidateBalances(s))
}

func TestValidateBalances_Mismatch(t *testing.T) {
	s := model.Summary{
		OpeningBalance: dec("42000"),
		ClosingBalance: dec("38000"),
		TotalCredits:   dec("30000"),
		TotalDebits:    dec("33500"),
	}
	warnings := ValidateBalances(s)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "38500.00")
	assert.Contains(t, warnings[0], "38000.00")
}

func TestValidateBalances_ToleranceBoundary(t *testing.T) {
	base := model.Summary{
		OpeningBalance: dec("100.00"),
		TotalCredits:   dec("50.00"),
		TotalDebits:    dec("25.00"),
	}

	// calculated = 125.00; a mismatch of exactly 1.00 is still tolerated.
	within := base
	within.ClosingBalance = dec("124.00")
	assert.Empty(t, ValidateBalances(within))

	beyond := base
	beyond.ClosingBalance = dec("123.99")
	assert.Len(t, ValidateBalances(beyond), 1)
}

func TestValidateBalances_MissingFieldsAreZero(t *testing.T) {
	// Zero-valued summary: 0 + 0 - 0 == 0, no warning.
	assert.Empty(t, ValidateBalances(model.Summary{}))

	// Only a closing balance present: mismatch against zero operands.
	warnings := ValidateBalances(model.Summary{ClosingBalance: dec("500")})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "0.00")
}
