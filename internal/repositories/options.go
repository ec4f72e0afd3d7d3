package repositories

import "errors"

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidReference is returned when a written reference is not a valid id
	// for the backing store.
	ErrInvalidReference = errors.New("invalid reference id")
)

// Populate selects which references are resolved at read time.
type Populate uint8

const (
	PopulateUsuario Populate = 1 << iota
	PopulateCategoria

	PopulateNone Populate = 0
)

// Has reports whether p includes ref.
func (p Populate) Has(ref Populate) bool { return p&ref != 0 }

// clearDangling empties a reference that was populated but whose target no
// longer exists, so it renders as null instead of a bare id.
func clearDangling[T any](requested bool, id *string, populated *T) {
	if requested && populated == nil {
		*id = ""
	}
}

// SortField orders results by a document field.
type SortField struct {
	Field string
	Desc  bool
}

// FindOptions controls ordering, paging and population of Find calls.
// Sorting is applied before Skip and Limit; Limit zero means no limit.
type FindOptions struct {
	Sort     []SortField
	Skip     int
	Limit    int
	Populate Populate
}

// ProductFilter narrows product queries. Count must be called with the same
// filter as the Find it paginates.
type ProductFilter struct {
	Disponible  *bool
	NombreRegex string // matched case-insensitively
}
