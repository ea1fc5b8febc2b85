package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/jmoiron/sqlx"
)

// Singleton describes a content type with exactly one row, keyed by ID.
// T's db tags must cover Columns.
type Singleton[T any] struct {
	Name    string
	Table   string
	ID      int64
	Columns []string
	Values  func(T) []any
}

// Get loads the record. A missing row is ErrNotFound; callers decide whether
// that means a default shape or a 404.
func Get[T any](ctx context.Context, s *Service, one Singleton[T]) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rec T
	query := "SELECT " + strings.Join(one.Columns, ", ") + " FROM " + one.Table + " WHERE id = ?"
	if err := s.db.GetContext(ctx, &rec, s.db.Rebind(query), one.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, fmt.Errorf("%s: %w", one.Name, ErrNotFound)
		}
		s.log.Error("Failed to read record", err, logger.Collection(one.Name))
		return rec, fmt.Errorf("%w: read %s: %w", ErrStorageUnavailable, one.Name, err)
	}
	if err := s.sanitizer.Struct(&rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// PrepareOne sanitizes rec in place, then validates the sanitized values.
func PrepareOne[T any](ctx context.Context, s *Service, prefix string, rec *T) error {
	if err := s.sanitizer.Struct(rec); err != nil {
		return err
	}
	if err := s.validator.Struct(ctx, prefix, rec); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

// Upsert validates, sanitizes and writes rec in its own transaction.
func Upsert[T any](ctx context.Context, s *Service, one Singleton[T], rec *T) error {
	if err := PrepareOne(ctx, s, "", rec); err != nil {
		return err
	}
	err := s.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		return UpsertTx(ctx, tx, one, *rec)
	})
	if err != nil {
		s.log.Error("Failed to upsert record", err, logger.Collection(one.Name))
		return err
	}
	s.log.Info("Record updated", logger.Collection(one.Name))
	return nil
}

// UpsertTx updates the row in place when it exists and inserts it otherwise.
func UpsertTx[T any](ctx context.Context, tx *sqlx.Tx, one Singleton[T], rec T) error {
	values := one.Values(rec)
	if len(values) != len(one.Columns) {
		return fmt.Errorf("record %s: %d values for %d columns", one.Name, len(values), len(one.Columns))
	}

	var existing int
	if err := tx.GetContext(ctx, &existing, tx.Rebind("SELECT COUNT(*) FROM "+one.Table+" WHERE id = ?"), one.ID); err != nil {
		return fmt.Errorf("check %s: %w", one.Name, err)
	}

	if existing > 0 {
		sets := make([]string, 0, len(one.Columns)+1)
		for _, col := range one.Columns {
			sets = append(sets, col+" = ?")
		}
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		query := "UPDATE " + one.Table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		args := append(values, one.ID)
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("update %s: %w", one.Name, err)
		}
		return nil
	}

	cols := append([]string{"id"}, one.Columns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := "INSERT INTO " + one.Table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"
	args := append([]any{one.ID}, values...)
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert %s: %w", one.Name, err)
	}
	return nil
}
