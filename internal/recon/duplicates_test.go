package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/statementlab/bankparse/internal/model"
)

func tx(date, desc, amount string) model.Transaction {
	return model.Transaction{Date: date, Description: desc, Amount: dec(amount)}
}

func TestCountDuplicates_NormalizedDescription(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-09-01", "rent", "100"),
		tx("2025-09-01", "RENT ", "100"),
		tx("2025-09-02", "food", "50"),
	}
	assert.Equal(t, 1, CountDuplicates(txs))
}

func TestCountDuplicates_NoDuplicates(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-09-01", "rent", "100"),
		tx("2025-09-02", "rent", "100"),
		tx("2025-09-01", "rent", "101"),
	}
	assert.Equal(t, 0, CountDuplicates(txs))
}

func TestCountDuplicates_RepeatedKeyCountsEachRepeat(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-09-01", "coffee", "3.50"),
		tx("2025-09-01", "coffee", "3.50"),
		tx("2025-09-01", "coffee", "3.50"),
	}
	assert.Equal(t, 2, CountDuplicates(txs))
}

func TestCountDuplicates_AmountNormalization(t *testing.T) {
	// "100" and "100.00" are the same amount.
	txs := []model.Transaction{
		tx("2025-09-01", "rent", "100"),
		tx("2025-09-01", "rent", "100.00"),
	}
	assert.Equal(t, 1, CountDuplicates(txs))
}

func TestCountDuplicates_MissingDescription(t *testing.T) {
	txs := []model.Transaction{
		tx("2025-09-01", "", "10"),
		tx("2025-09-01", "   ", "10"),
	}
	assert.Equal(t, 1, CountDuplicates(txs))
}

func TestCountDuplicates_Empty(t *testing.T) {
	assert.Equal(t, 0, CountDuplicates(nil))
}
