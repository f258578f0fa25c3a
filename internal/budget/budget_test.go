package budget_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tiammomo/mamoji/internal/budget"
)

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		name   string
		spent  string
		amount string
		want   budget.Status
	}{
		{"UnderBudget", "200", "1000", budget.StatusActive},
		{"ExactlyAtBudget", "500", "500", budget.StatusCompleted},
		{"OverBudget", "501", "500", budget.StatusOver},
		{"ZeroSpent", "0", "1000", budget.StatusActive},
		{"FractionalOver", "100.01", "100", budget.StatusOver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spent := decimal.RequireFromString(tt.spent)
			amount := decimal.RequireFromString(tt.amount)

			assert.Equal(t, tt.want, budget.DetermineStatus(spent, amount))
		})
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name   string
		spent  string
		amount string
		want   float64
	}{
		{"Zero", "0", "1000", 0.0},
		{"Half", "500", "1000", 50.0},
		{"Full", "500", "500", 100.0},
		{"Over", "501", "500", 100.2},
		{"ZeroAmount", "100", "0", 0.0},
		{"NegativeAmount", "100", "-5", 0.0},
		// Half-up tie-break on the third decimal: 33.3335% rounds to 33.33,
		// 33.335% rounds up to 33.34.
		{"RoundsDown", "333.335", "1000", 33.33},
		{"RoundsHalfUp", "33.335", "100", 33.34},
		{"TwoDecimals", "200", "1000", 20.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spent := decimal.RequireFromString(tt.spent)
			amount := decimal.RequireFromString(tt.amount)

			assert.InDelta(t, tt.want, budget.Progress(spent, amount), 1e-9)
		})
	}
}
