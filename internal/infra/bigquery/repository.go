// Package bigquery persists finished parse runs to a BigQuery dataset so
// downstream dashboards can query statement history.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/statementlab/bankparse/internal/model"
)

// Repository writes parse runs and their transactions to a dataset.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, projectID: projectID, datasetID: datasetID}, nil
}

func (r *Repository) Close() error {
	return r.client.Close()
}

// InsertParseRun stores the run header row.
func (r *Repository) InsertParseRun(ctx context.Context, row *ParseRunRow) error {
	inserter := r.client.Dataset(r.datasetID).Table(runsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertParseRun: inserting row: %w", err)
	}
	return nil
}

// InsertTransactions stores a batch of statement lines for one run.
func (r *Repository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := r.client.Dataset(r.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// ListParseRuns returns the most recent run headers, newest first.
func (r *Repository) ListParseRuns(ctx context.Context, limit int) ([]*ParseRunRow, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			run_id,
			source_uri,
			bank_name,
			account_holder_name,
			account_number_masked,
			statement_month,
			account_type,
			currency,
			opening_balance,
			closing_balance,
			total_credits,
			total_debits,
			average_daily_balance,
			overdraft_count,
			nsf_count,
			text_source,
			warnings,
			insights,
			created_ts
		FROM `+"`%s.%s.%s`"+`
		ORDER BY created_ts DESC
		LIMIT @limit
	`, r.projectID, r.datasetID, runsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListParseRuns: reading query: %w", err)
	}

	var runs []*ParseRunRow
	for {
		var row ParseRunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListParseRuns: iterating: %w", err)
		}
		runs = append(runs, &row)
	}
	return runs, nil
}

// SaveResult implements the pipeline sink. The run header and its
// transactions are written in two inserts; a failed transaction batch leaves
// the header in place, which is acceptable for an append-only audit table.
func (r *Repository) SaveResult(ctx context.Context, sourceURI string, res *model.Result) error {
	row := NewParseRunRow(sourceURI, res)
	if err := r.InsertParseRun(ctx, row); err != nil {
		return fmt.Errorf("SaveResult: %w", err)
	}
	txRows := NewTransactionRows(row.RunID, res.Fields.Transactions)
	if err := r.InsertTransactions(ctx, txRows); err != nil {
		return fmt.Errorf("SaveResult: %w", err)
	}
	return nil
}
