package model

import (
	"encoding/json"
	"fmt"
)

// DecodeStatement parses extractor JSON into a Statement. Some statements
// carry several accounts under an "accounts" array; in that case the first
// account wins, matching the single-account contract of the rest of the
// pipeline.
func DecodeStatement(data []byte) (Statement, error) {
	var doc struct {
		Statement
		Accounts []Statement `json:"accounts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Statement{}, fmt.Errorf("decode statement: %w", err)
	}
	if len(doc.Accounts) > 0 {
		return doc.Accounts[0], nil
	}
	return doc.Statement, nil
}
