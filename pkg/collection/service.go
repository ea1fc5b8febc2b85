// Package collection stores admin-editable content: ordered collections that are
// replaced as a whole inside one transaction, and singleton records that are
// upserted in place.
package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/sanitize"
	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
	"github.com/jmoiron/sqlx"
)

// DefaultTimeout bounds every store call when no WithTimeout option is given.
const DefaultTimeout = 10 * time.Second

// Service owns no state besides its collaborators; the pool behind db is shared
// process-wide and a transaction holds one connection until commit or rollback.
type Service struct {
	db        *sqlx.DB
	validator *validation.Validator
	sanitizer *sanitize.Sanitizer
	timeout   time.Duration
	log       logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the per-call store timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns a Service over db.
func New(db *sqlx.DB, v *validation.Validator, s *sanitize.Sanitizer, opts ...Option) *Service {
	svc := &Service{
		db:        db,
		validator: v,
		sanitizer: s,
		timeout:   DefaultTimeout,
		log:       logger.Get(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.log = svc.log.WithComponent("collection")
	return svc
}

// Ping checks that the store answers within the call timeout.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// WithTx runs fn inside one transaction. fn's error, a panic, or a failed
// commit rolls everything back. Writes are never retried.
func (s *Service) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStorageUnavailable, err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx)
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		s.rollback(tx)
		return classifyWriteErr(err)
	}
	if err := tx.Commit(); err != nil {
		return classifyWriteErr(fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *Service) rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.log.Error("Rollback failed", err)
	}
}

func classifyWriteErr(err error) error {
	switch {
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrStorageUnavailable),
		errors.Is(err, ErrTransactionFailed):
		return err
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
}
