package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/errs"
)

// BalanceDelta maps a transaction type and its positive amount to the
// signed change it causes on an account balance. This is the single policy
// point for the sign of money movement; no other component decides
// direction on its own. An unrecognized type is an error, never silently
// treated as an expense.
func BalanceDelta(typ Type, amount decimal.Decimal) (decimal.Decimal, error) {
	switch typ {
	case TypeIncome:
		return amount, nil
	case TypeExpense:
		return amount.Neg(), nil
	default:
		return decimal.Zero, errs.Validation("unsupported transaction type: %s", typ)
	}
}

// AffectsBudget reports whether transactions of this type count toward
// budget spending. Only expenses do.
func AffectsBudget(typ Type) bool {
	return typ == TypeExpense
}
