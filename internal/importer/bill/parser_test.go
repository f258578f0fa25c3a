package bill_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiammomo/mamoji/internal/importer/bill"
	"github.com/tiammomo/mamoji/internal/transaction"
)

func TestParser_Alipay(t *testing.T) {
	// Alipay bills carry preamble lines before the header and a footer
	// after the data.
	input := strings.Join([]string{
		"支付宝交易明细",
		"起始时间：2024-05-01,终止时间：2024-05-31",
		"---------------------------------",
		"交易时间,交易分类,交易对方,商品说明,收/支,金额,交易状态",
		"2024-05-03 12:30:00,餐饮美食,某某餐厅,午餐,支出,38.00,交易成功",
		"2024-05-10 09:00:00,转账红包,朋友,转账,不计收支,200.00,交易成功",
		"2024-05-15 18:00:00,其他,公司,报销,收入,500.00,交易成功",
		"---------------------------------",
		"共3笔",
	}, "\n")

	records, err := bill.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, transaction.TypeExpense, records[0].Type)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("38.00")))
	assert.Equal(t, "餐饮美食", records[0].Category)
	assert.Equal(t, "午餐", records[0].Note)
	assert.Equal(t, time.Date(2024, 5, 3, 12, 30, 0, 0, time.UTC), records[0].OccurredAt)

	assert.Equal(t, transaction.TypeIncome, records[1].Type)
	assert.True(t, records[1].Amount.Equal(decimal.RequireFromString("500.00")))
}

func TestParser_Wechat(t *testing.T) {
	// WeChat amounts carry a currency prefix.
	input := strings.Join([]string{
		"微信支付账单明细",
		"交易时间,交易类型,交易对方,商品,收/支,金额(元),当前状态",
		"2024-05-03 12:30:00,商户消费,便利店,饮料,支出,¥6.50,支付成功",
		"2024-05-04 08:00:00,微信红包,家人,红包,收入,¥88.00,已存入零钱",
	}, "\n")

	records, err := bill.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, transaction.TypeExpense, records[0].Type)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("6.50")))
	assert.Equal(t, "商户消费", records[0].Category)

	assert.Equal(t, transaction.TypeIncome, records[1].Type)
	assert.True(t, records[1].Amount.Equal(decimal.RequireFromString("88.00")))
}

func TestParser_Generic(t *testing.T) {
	input := strings.Join([]string{
		"Date,Type,Amount,Category,Note",
		"2024-05-01,expense,12.30,Groceries,weekly shop",
		"2024-05-02,income,\"1,500.00\",Salary,may payout",
		"2024-05-03,expense,0,Groceries,zero rows are skipped",
		"not-a-date,expense,5.00,Groceries,footer noise",
	}, "\n")

	records, err := bill.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, transaction.TypeExpense, records[0].Type)
	assert.Equal(t, "Groceries", records[0].Category)

	// Thousands separators are tolerated.
	assert.True(t, records[1].Amount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), records[1].OccurredAt)
}

func TestParser_NoMatchingFormat(t *testing.T) {
	input := "foo,bar\n1,2\n"

	_, err := bill.NewParser().Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching bill format")
}
