package importer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiammomo/mamoji/internal/category"
	"github.com/tiammomo/mamoji/internal/errs"
	"github.com/tiammomo/mamoji/internal/importer"
	"github.com/tiammomo/mamoji/internal/transaction"
)

type fakeEngine struct {
	created []transaction.CreateParams
	listed  []*transaction.Transaction
	failOn  decimal.Decimal
}

func (f *fakeEngine) Create(_ context.Context, _ uuid.UUID, params transaction.CreateParams) (*transaction.Transaction, error) {
	if !f.failOn.IsZero() && params.Amount.Equal(f.failOn) {
		return nil, errs.Validation("rejected")
	}

	f.created = append(f.created, params)

	return &transaction.Transaction{ID: uuid.New()}, nil
}

func (f *fakeEngine) List(_ context.Context, _ uuid.UUID, _ transaction.ListFilter) ([]*transaction.Transaction, error) {
	return f.listed, nil
}

type fakeCategories struct {
	cats []*category.Category
}

func (f *fakeCategories) List(_ context.Context, _ uuid.UUID, _ *category.Kind) ([]*category.Category, error) {
	return f.cats, nil
}

func TestService_Import(t *testing.T) {
	dining := &category.Category{ID: uuid.New(), Name: "餐饮美食", Kind: category.KindExpense, Active: true}
	fallbackExpense := uuid.New()
	fallbackIncome := uuid.New()

	engine := &fakeEngine{}
	svc := importer.NewService(engine, &fakeCategories{cats: []*category.Category{dining}})

	input := strings.Join([]string{
		"交易时间,交易分类,交易对方,商品说明,收/支,金额,交易状态",
		"2024-05-03 12:30:00,餐饮美食,某某餐厅,午餐,支出,38.00,交易成功",
		"2024-05-15 18:00:00,其他,公司,报销,收入,500.00,交易成功",
	}, "\n")

	accountID := uuid.New()

	result, err := svc.Import(context.Background(), uuid.New(), importer.ImportOptions{
		AccountID:                accountID,
		DefaultExpenseCategoryID: fallbackExpense,
		DefaultIncomeCategoryID:  fallbackIncome,
	}, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, engine.created, 2)

	// Matched category label resolves to the owner's category.
	assert.Equal(t, dining.ID, engine.created[0].CategoryID)
	assert.Equal(t, accountID, engine.created[0].AccountID)

	// Unmatched income label falls back to the default income category.
	assert.Equal(t, fallbackIncome, engine.created[1].CategoryID)
}

func TestService_Import_CountsRejectedRows(t *testing.T) {
	engine := &fakeEngine{failOn: decimal.RequireFromString("500.00")}
	svc := importer.NewService(engine, &fakeCategories{})

	input := strings.Join([]string{
		"Date,Type,Amount,Category,Note",
		"2024-05-01,expense,38.00,Groceries,ok",
		"2024-05-02,income,500.00,Salary,rejected by the engine",
	}, "\n")

	result, err := svc.Import(context.Background(), uuid.New(), importer.ImportOptions{
		AccountID:                uuid.New(),
		DefaultExpenseCategoryID: uuid.New(),
		DefaultIncomeCategoryID:  uuid.New(),
	}, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestService_Import_RequiresAccount(t *testing.T) {
	svc := importer.NewService(&fakeEngine{}, &fakeCategories{})

	_, err := svc.Import(context.Background(), uuid.New(), importer.ImportOptions{}, strings.NewReader(""))
	assert.True(t, errs.IsValidation(err))
}

func TestService_Preview(t *testing.T) {
	svc := importer.NewService(&fakeEngine{}, &fakeCategories{})

	input := strings.Join([]string{
		"Date,Type,Amount,Category,Note",
		"2024-05-01,expense,38.00,Groceries,ok",
	}, "\n")

	records, err := svc.Preview(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, transaction.TypeExpense, records[0].Type)
}

func TestService_ExportCSV(t *testing.T) {
	groceries := &category.Category{ID: uuid.New(), Name: "Groceries", Kind: category.KindExpense, Active: true}

	engine := &fakeEngine{listed: []*transaction.Transaction{
		{
			ID:         uuid.New(),
			CategoryID: groceries.ID,
			Type:       transaction.TypeExpense,
			Amount:     decimal.RequireFromString("38.5"),
			Note:       "weekly shop",
			OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Active:     true,
		},
	}}

	svc := importer.NewService(engine, &fakeCategories{cats: []*category.Category{groceries}})

	var buf bytes.Buffer

	require.NoError(t, svc.ExportCSV(context.Background(), uuid.New(), transaction.ListFilter{}, &buf))

	want := "Date,Type,Amount,Category,Note\n" +
		"2024-05-01 10:00:00,expense,38.5,Groceries,weekly shop\n"
	assert.Equal(t, want, buf.String())

	// An export can be fed straight back into the parser.
	records, err := svc.Preview(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("38.5")))
}
