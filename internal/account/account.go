package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies what kind of money an account holds. Credit and debt
// accounts count as liabilities in the summary; everything else is an asset.
type Type string

const (
	TypeBank             Type = "bank"
	TypeCash             Type = "cash"
	TypeAlipay           Type = "alipay"
	TypeWechat           Type = "wechat"
	TypeCredit           Type = "credit"
	TypeGold             Type = "gold"
	TypeFund             Type = "fund"
	TypeFundAccumulation Type = "fund_accumulation"
	TypeStock            Type = "stock"
	TypeTopup            Type = "topup"
	TypeDebt             Type = "debt"
)

var knownTypes = map[Type]struct{}{
	TypeBank: {}, TypeCash: {}, TypeAlipay: {}, TypeWechat: {},
	TypeCredit: {}, TypeGold: {}, TypeFund: {}, TypeFundAccumulation: {},
	TypeStock: {}, TypeTopup: {}, TypeDebt: {},
}

func (t Type) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Liability reports whether balances of this type count against net assets.
func (t Type) Liability() bool {
	return t == TypeCredit || t == TypeDebt
}

// Account holds a balance. The balance is the single source of truth for the
// money the account holds; it is mutated through signed deltas only, except
// for an explicit stated-balance edit by the owner.
type Account struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Type           Type
	Balance        decimal.Decimal
	Currency       string
	IncludeInTotal bool
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Summary aggregates an owner's accounts into assets, liabilities and net.
// Balances contribute by absolute magnitude; accounts excluded from totals
// are skipped entirely.
type Summary struct {
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetAssets        decimal.Decimal
	AccountCount     int
}

// ErrNotFound covers both a missing account and an account owned by someone
// else; the two cases are deliberately indistinguishable to the caller.
var ErrNotFound = errors.New("account not found")
