package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind says which side of the books a category classifies.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Category labels transactions. System categories have no owner and are
// visible to every user; user categories belong to their creator.
type Category struct {
	ID        uuid.UUID
	OwnerID   *uuid.UUID // nil for system categories
	Name      string
	Kind      Kind
	Icon      string
	Active    bool
	CreatedAt time.Time
}

func (c *Category) System() bool {
	return c.OwnerID == nil
}

var ErrNotFound = errors.New("category not found")
