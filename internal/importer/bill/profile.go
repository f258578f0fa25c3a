package bill

// Profile describes the column layout of one bill export format. Adding a
// new source is just adding a new Profile to the profiles slice.
type Profile struct {
	Name        string
	DateCol     string
	KindCol     string
	AmountCol   string
	CategoryCol string
	NoteCol     string

	// Labels the KindCol uses for the two directions. Rows with any other
	// label (transfers, frozen amounts) are skipped.
	IncomeLabel  string
	ExpenseLabel string
}

// requiredCols returns the column names that must be present for this
// profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.DateCol, p.KindCol, p.AmountCol}
}

// profiles is the ordered list of bill formats to try during
// auto-detection. More specific profiles come first to avoid false
// matches.
var profiles = []Profile{
	{
		Name:         "alipay",
		DateCol:      "交易时间",
		KindCol:      "收/支",
		AmountCol:    "金额",
		CategoryCol:  "交易分类",
		NoteCol:      "商品说明",
		IncomeLabel:  "收入",
		ExpenseLabel: "支出",
	},
	{
		Name:         "wechat",
		DateCol:      "交易时间",
		KindCol:      "收/支",
		AmountCol:    "金额(元)",
		CategoryCol:  "交易类型",
		NoteCol:      "商品",
		IncomeLabel:  "收入",
		ExpenseLabel: "支出",
	},
	{
		Name:         "generic",
		DateCol:      "Date",
		KindCol:      "Type",
		AmountCol:    "Amount",
		CategoryCol:  "Category",
		NoteCol:      "Note",
		IncomeLabel:  "income",
		ExpenseLabel: "expense",
	},
}
