package bill

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/tiammomo/mamoji/internal/encoding"
	"github.com/tiammomo/mamoji/internal/transaction"
)

// Parser reads CSV bill exports and produces import records. It
// auto-detects which format (Alipay, WeChat, generic) is being used by
// matching column headers against known profiles. Platform bills ship with
// preamble lines before the header, so the header may sit anywhere in the
// file.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Record, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching bill format found: expected columns for alipay, wechat, or generic csv")
	}

	return parseRows(profile, colMap, rows[headerIdx+1:]), nil
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// matchesProfile checks if all required columns of a profile are present.
func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts records from data rows using the matched profile.
// Rows that do not carry a parseable date, a known direction label and a
// positive amount are skipped; bills pad their tail with summary lines.
func parseRows(p *Profile, cols colIndex, rows [][]string) []Record {
	dateIdx := cols[p.DateCol]
	kindIdx := cols[p.KindCol]
	amountIdx := cols[p.AmountCol]

	categoryIdx := -1
	if idx, ok := cols[p.CategoryCol]; ok {
		categoryIdx = idx
	}

	noteIdx := -1
	if idx, ok := cols[p.NoteCol]; ok {
		noteIdx = idx
	}

	var records []Record

	for _, row := range rows {
		date, ok := parseDate(row, dateIdx)
		if !ok {
			continue
		}

		var typ transaction.Type

		switch cellValue(row, kindIdx) {
		case p.IncomeLabel:
			typ = transaction.TypeIncome
		case p.ExpenseLabel:
			typ = transaction.TypeExpense
		default:
			// Transfers and balance-neutral rows.
			continue
		}

		amount, ok := parseAmount(cellValue(row, amountIdx))
		if !ok {
			continue
		}

		records = append(records, Record{
			Type:       typ,
			Amount:     amount,
			Category:   cellValue(row, categoryIdx),
			Note:       cellValue(row, noteIdx),
			OccurredAt: date,
		})
	}

	return records
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// parseDate tries the known date layouts for the given cell index. Returns
// false for empty cells or unparseable values (preamble and footer rows).
func parseDate(row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount handles plain decimals plus the decorations bill exports
// use: a currency prefix ("¥38.00") and thousands separators.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if s == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(s)
	if err != nil || amount.Sign() <= 0 {
		return decimal.Zero, false
	}

	return amount, true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
