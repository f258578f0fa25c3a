package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/tiammomo/mamoji/internal/category"
	"github.com/tiammomo/mamoji/internal/errs"
	"github.com/tiammomo/mamoji/internal/importer/bill"
	"github.com/tiammomo/mamoji/internal/transaction"
)

// TransactionEngine is the slice of the transaction service imports and
// exports go through.
type TransactionEngine interface {
	Create(ctx context.Context, ownerID uuid.UUID, params transaction.CreateParams) (*transaction.Transaction, error)
	List(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// CategoryLister provides the categories visible to an owner, for matching
// bill category labels.
type CategoryLister interface {
	List(ctx context.Context, ownerID uuid.UUID, kind *category.Kind) ([]*category.Category, error)
}

type Service struct {
	parser       Parser
	transactions TransactionEngine
	categories   CategoryLister
}

func NewService(transactions TransactionEngine, categories CategoryLister) *Service {
	return &Service{
		parser:       bill.NewParser(),
		transactions: transactions,
		categories:   categories,
	}
}

// Preview parses the bill without writing anything, so the caller can show
// what a confirmed import would record.
func (s *Service) Preview(r io.Reader) ([]bill.Record, error) {
	return s.parser.Parse(r)
}

type ImportOptions struct {
	AccountID uuid.UUID
	LedgerID  *uuid.UUID

	// Categories used when a bill row's category label matches nothing the
	// owner can see.
	DefaultExpenseCategoryID uuid.UUID
	DefaultIncomeCategoryID  uuid.UUID
}

type ImportResult struct {
	Imported int
	Skipped  int
}

// Import parses the bill and records every row through the transaction
// engine, so balances and budgets move exactly as they would for manual
// entry. Rows the engine rejects are counted, not fatal.
func (s *Service) Import(ctx context.Context, ownerID uuid.UUID, opts ImportOptions, r io.Reader) (*ImportResult, error) {
	if opts.AccountID == uuid.Nil {
		return nil, errs.Validation("import account is required")
	}

	records, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	byLabel, err := s.categoryIndex(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}

	for _, rec := range records {
		categoryID := s.resolveCategory(byLabel, rec, opts)
		if categoryID == uuid.Nil {
			result.Skipped++
			continue
		}

		_, err := s.transactions.Create(ctx, ownerID, transaction.CreateParams{
			LedgerID:   opts.LedgerID,
			AccountID:  opts.AccountID,
			CategoryID: categoryID,
			Type:       rec.Type,
			Amount:     rec.Amount,
			Note:       rec.Note,
			OccurredAt: rec.OccurredAt,
		})
		if err != nil {
			result.Skipped++
			continue
		}

		result.Imported++
	}

	return result, nil
}

type categoryKey struct {
	name string
	kind category.Kind
}

func (s *Service) categoryIndex(ctx context.Context, ownerID uuid.UUID) (map[categoryKey]uuid.UUID, error) {
	cats, err := s.categories.List(ctx, ownerID, nil)
	if err != nil {
		return nil, err
	}

	byLabel := make(map[categoryKey]uuid.UUID, len(cats))

	for _, c := range cats {
		byLabel[categoryKey{name: c.Name, kind: c.Kind}] = c.ID
	}

	return byLabel, nil
}

func (s *Service) resolveCategory(byLabel map[categoryKey]uuid.UUID, rec bill.Record, opts ImportOptions) uuid.UUID {
	kind := category.KindExpense
	if rec.Type == transaction.TypeIncome {
		kind = category.KindIncome
	}

	if id, ok := byLabel[categoryKey{name: rec.Category, kind: kind}]; ok {
		return id
	}

	if rec.Type == transaction.TypeIncome {
		return opts.DefaultIncomeCategoryID
	}

	return opts.DefaultExpenseCategoryID
}

var exportHeader = []string{"Date", "Type", "Amount", "Category", "Note"}

// ExportCSV writes the owner's active transactions matching the filter in
// the generic bill format, so an export can be re-imported.
func (s *Service) ExportCSV(ctx context.Context, ownerID uuid.UUID, filter transaction.ListFilter, w io.Writer) error {
	txs, err := s.transactions.List(ctx, ownerID, filter)
	if err != nil {
		return err
	}

	names := make(map[uuid.UUID]string)

	cats, err := s.categories.List(ctx, ownerID, nil)
	if err != nil {
		return err
	}

	for _, c := range cats {
		names[c.ID] = c.Name
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, tx := range txs {
		row := []string{
			tx.OccurredAt.Format("2006-01-02 15:04:05"),
			string(tx.Type),
			tx.Amount.String(),
			names[tx.CategoryID],
			tx.Note,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
