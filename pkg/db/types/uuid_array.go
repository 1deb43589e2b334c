// Package dbtypes holds column types shared by the storefront models.
package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray maps a postgres uuid[] column. SQLite stores the same array
// literal as text.
type UUIDArray []uuid.UUID

func (a UUIDArray) Contains(id uuid.UUID) bool {
	return slices.Contains(a, id)
}

// Dedup keeps the first occurrence of each id.
func (a UUIDArray) Dedup() UUIDArray {
	out := make(UUIDArray, 0, len(a))
	for _, id := range a {
		if !out.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

func (UUIDArray) GormDataType() string { return "uuid[]" }

// Scan accepts the postgres text form, quoted or bare.
func (a *UUIDArray) Scan(src any) error {
	var literal pq.StringArray
	if err := literal.Scan(src); err != nil {
		return fmt.Errorf("uuid array: %w", err)
	}
	ids := make(UUIDArray, len(literal))
	for i, raw := range literal {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("uuid array element %d: %w", i, err)
		}
		ids[i] = id
	}
	*a = ids
	return nil
}

func (a UUIDArray) Value() (driver.Value, error) {
	literal := make(pq.StringArray, len(a))
	for i, id := range a {
		literal[i] = id.String()
	}
	return literal.Value()
}
