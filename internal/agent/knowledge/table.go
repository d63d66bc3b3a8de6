package knowledge

import (
	"github.com/aqarat-core-poc/server/internal/agent/model"
)

// Table is the immutable in-memory listings table. It is loaded once at
// process start; concurrent sessions share one instance without locking
// because no writes ever occur after construction.
type Table struct {
	rows []model.Property
}

// NewTable wraps rows in their load order. The slice is copied so later
// mutation by the caller cannot leak into the table.
func NewTable(rows []model.Property) *Table {
	copied := make([]model.Property, len(rows))
	copy(copied, rows)
	return &Table{rows: copied}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of all rows in insertion order.
func (t *Table) Rows() []model.Property {
	out := make([]model.Property, len(t.rows))
	copy(out, t.rows)
	return out
}
