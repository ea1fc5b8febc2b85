package collection

import (
	"context"
	"fmt"
	"strings"

	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/sanitize"
	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
	"github.com/jmoiron/sqlx"
)

// PositionColumn holds the 1-based rank of an item inside its collection.
const PositionColumn = "position"

// MaxItems caps one collection so its single INSERT stays under the
// placeholder limits of every supported driver (65535 on MySQL).
const MaxItems = 500

// Scope restricts a collection to the rows of one parent record.
type Scope struct {
	Column string
	Value  any
}

// Collection describes one fixed, ordered collection.
//
// T must be a struct whose db tags cover Columns plus "position". Values returns
// T's column values in the order of Columns.
type Collection[T any] struct {
	Name    string
	Table   string
	Columns []string
	Scope   *Scope
	Values  func(T) []any
}

func (c Collection[T]) where() (string, []any) {
	if c.Scope == nil {
		return "", nil
	}
	return " WHERE " + c.Scope.Column + " = ?", []any{c.Scope.Value}
}

func (c Collection[T]) selectQuery() (string, []any) {
	where, args := c.where()
	cols := append(append([]string{}, c.Columns...), PositionColumn)
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + c.Table + where +
		" ORDER BY " + PositionColumn, args
}

func (c Collection[T]) deleteQuery() (string, []any) {
	where, args := c.where()
	return "DELETE FROM " + c.Table + where, args
}

// insertQuery builds a single multi-row INSERT; position is the slice index + 1.
func (c Collection[T]) insertQuery(items []T) (string, []any, error) {
	cols := make([]string, 0, len(c.Columns)+2)
	if c.Scope != nil {
		cols = append(cols, c.Scope.Column)
	}
	cols = append(cols, c.Columns...)
	cols = append(cols, PositionColumn)

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	rows := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*len(cols))

	for i, item := range items {
		values := c.Values(item)
		if len(values) != len(c.Columns) {
			return "", nil, fmt.Errorf("collection %s: %d values for %d columns", c.Name, len(values), len(c.Columns))
		}
		if c.Scope != nil {
			args = append(args, c.Scope.Value)
		}
		args = append(args, values...)
		args = append(args, i+1)
		rows = append(rows, row)
	}

	query := "INSERT INTO " + c.Table + " (" + strings.Join(cols, ", ") + ") VALUES " + strings.Join(rows, ", ")
	return query, args, nil
}

// Read returns the collection sorted by position, re-sanitized for display.
// An empty collection is an empty slice, not an error.
func Read[T any](ctx context.Context, s *Service, c Collection[T]) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, args := c.selectQuery()
	items := []T{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		s.log.Error("Failed to read collection", err, logger.Collection(c.Name))
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, c.Name, err)
	}
	if err := sanitize.Each(s.sanitizer, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Prepare sanitizes every item in place, then validates what will be stored,
// so length limits apply to the sanitized text. Field errors are reported as
// prefix[i].field. More than MaxItems items is a validation failure.
func Prepare[T any](ctx context.Context, s *Service, prefix string, items []T) error {
	if len(items) > MaxItems {
		return fmt.Errorf("%w: %w", ErrValidationFailed, validation.Errors{{
			Field:   prefix,
			Rule:    "max",
			Message: fmt.Sprintf("%s must contain at most %d items", prefix, MaxItems),
		}})
	}
	if err := sanitize.Each(s.sanitizer, items); err != nil {
		return err
	}
	if err := validation.Each(ctx, s.validator, prefix, items); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

// Replace atomically swaps the whole collection for items. The caller's order is
// authoritative. items is sanitized in place. It returns the number of items written.
func Replace[T any](ctx context.Context, s *Service, c Collection[T], items []T) (int, error) {
	if err := Prepare(ctx, s, "items", items); err != nil {
		return 0, err
	}

	var written int
	err := s.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		n, err := ReplaceTx(ctx, tx, c, items)
		written = n
		return err
	})
	if err != nil {
		s.log.Error("Failed to replace collection", err, logger.Collection(c.Name))
		return 0, err
	}

	s.log.Info("Collection replaced", logger.Collection(c.Name), logger.Count(written))
	return written, nil
}

// ReplaceTx deletes the collection and bulk-inserts items inside tx. Items must
// already be prepared. Used directly when several writes share a transaction.
func ReplaceTx[T any](ctx context.Context, tx *sqlx.Tx, c Collection[T], items []T) (int, error) {
	del, delArgs := c.deleteQuery()
	if _, err := tx.ExecContext(ctx, tx.Rebind(del), delArgs...); err != nil {
		return 0, fmt.Errorf("delete %s: %w", c.Name, err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	ins, insArgs, err := c.insertQuery(items)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(ins), insArgs...); err != nil {
		return 0, fmt.Errorf("insert %s: %w", c.Name, err)
	}
	return len(items), nil
}
