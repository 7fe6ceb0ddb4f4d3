package recon

import (
	"strings"

	"github.com/statementlab/bankparse/internal/model"
)

// dupKey identifies a transaction for duplicate comparison. The description is
// trimmed and lower-cased; the amount is normalized through decimal so that
// "100" and "100.00" collide.
type dupKey struct {
	date   string
	amount string
	desc   string
}

// CountDuplicates counts transactions that exactly repeat an earlier one by
// (date, amount, normalized description). The first occurrence of a key is
// never counted; every later occurrence adds one. A missing description is
// treated as empty.
func CountDuplicates(txs []model.Transaction) int {
	seen := make(map[dupKey]struct{}, len(txs))
	duplicates := 0
	for _, tx := range txs {
		key := dupKey{
			date:   tx.Date,
			amount: tx.Amount.String(),
			desc:   strings.ToLower(strings.TrimSpace(tx.Description)),
		}
		if _, ok := seen[key]; ok {
			duplicates++
		} else {
			seen[key] = struct{}{}
		}
	}
	return duplicates
}
