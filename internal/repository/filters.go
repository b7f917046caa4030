package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jaapa/jaapa-api/internal/models"
)

// ErrNoRowsUpdated signals an UPDATE that matched nothing. Services map it
// to a not-found error.
var ErrNoRowsUpdated = errors.New("no rows updated")

// Tx is the transactional surface handed to services. Write methods accept
// it through sqlx.ExtContext; services only add commit and rollback.
type Tx interface {
	sqlx.ExtContext
	Commit() error
	Rollback() error
}

// appendDateFilter translates a DateFilter into a WHERE fragment for the
// given column. Criteria are mutually exclusive with a fixed priority:
// is-blank > is-not-blank > not-equal > equals > between > greater-than >
// less-than. Exactly one branch is applied.
func appendDateFilter(column string, f models.DateFilter, where []string, args []interface{}) ([]string, []interface{}) {
	switch {
	case f.IsBlank:
		where = append(where, fmt.Sprintf("%s IS NULL", column))
	case f.IsNotBlank:
		where = append(where, fmt.Sprintf("%s IS NOT NULL", column))
	case f.NotEqual != nil:
		where = append(where, fmt.Sprintf("%s <> $%d", column, len(args)+1))
		args = append(args, *f.NotEqual)
	case f.Equals != nil:
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, *f.Equals)
	case f.From != nil && f.To != nil:
		where = append(where, fmt.Sprintf("%s BETWEEN $%d AND $%d", column, len(args)+1, len(args)+2))
		args = append(args, *f.From, *f.To)
	case f.From != nil:
		where = append(where, fmt.Sprintf("%s > $%d", column, len(args)+1))
		args = append(args, *f.From)
	case f.To != nil:
		where = append(where, fmt.Sprintf("%s < $%d", column, len(args)+1))
		args = append(args, *f.To)
	}
	return where, args
}

// orderClause resolves sort input against an allow-list, falling back to the
// identifier descending so the most recent rows come first.
func orderClause(sortBy, sortOrder, idColumn string, allowed map[string]string) string {
	column, ok := allowed[sortBy]
	if !ok {
		return fmt.Sprintf("%s DESC", idColumn)
	}
	order := strings.ToUpper(sortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return fmt.Sprintf("%s %s", column, order)
}

// pageBounds normalises pagination inputs.
func pageBounds(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	return page, size, (page - 1) * size
}
