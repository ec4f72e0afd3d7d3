package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormError maps GORM failures onto the package sentinels. The gorm.DB must be
// opened with TranslateError so unique violations surface as ErrDuplicatedKey.
func gormError(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// applyOrder translates document field names into columns. A primary key
// tie-break is always appended so paging is deterministic.
func applyOrder(q *gorm.DB, sorts []SortField, columns map[string]string) (*gorm.DB, error) {
	byID := false
	for _, s := range sorts {
		col, ok := columns[s.Field]
		if !ok {
			return nil, errors.Errorf("unsupported sort field %q", s.Field)
		}
		if col == "id" {
			byID = true
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: s.Desc})
	}
	if !byID {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return q, nil
}

func applyPage(q *gorm.DB, skip, limit int) *gorm.DB {
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func pageSlice[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
