package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiammomo/mamoji/internal/account"
	"github.com/tiammomo/mamoji/internal/category"
	"github.com/tiammomo/mamoji/internal/transaction"
)

type transactionResponse struct {
	ID         uuid.UUID        `json:"id"`
	LedgerID   *uuid.UUID       `json:"ledger_id,omitempty"`
	AccountID  uuid.UUID        `json:"account_id"`
	CategoryID uuid.UUID        `json:"category_id"`
	BudgetID   *uuid.UUID       `json:"budget_id,omitempty"`
	Type       transaction.Type `json:"type"`
	Amount     decimal.Decimal  `json:"amount"`
	Currency   string           `json:"currency"`
	Note       string           `json:"note,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  *time.Time       `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:         tx.ID,
		LedgerID:   tx.LedgerID,
		AccountID:  tx.AccountID,
		CategoryID: tx.CategoryID,
		BudgetID:   tx.BudgetID,
		Type:       tx.Type,
		Amount:     tx.Amount,
		Currency:   tx.Currency,
		Note:       tx.Note,
		OccurredAt: tx.OccurredAt,
		CreatedAt:  tx.CreatedAt,
		UpdatedAt:  tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

// notFound covers the referenced entities a mutation can trip over.
func notFound(err error) bool {
	return errors.Is(err, transaction.ErrNotFound) ||
		errors.Is(err, account.ErrNotFound) ||
		errors.Is(err, category.ErrNotFound)
}
