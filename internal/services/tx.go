package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const maxTxAttempts = 3

const sqliteUniqueFailed = "UNIQUE constraint failed:"

const (
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
)

// txRunner executes a unit of work in one transaction. Serialization
// failures are retried; any other error rolls back and is returned as is.
type txRunner struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

func (r txRunner) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if r.opts != nil {
			err = r.db.WithContext(ctx).Transaction(fn, r.opts)
		} else {
			err = r.db.WithContext(ctx).Transaction(fn)
		}
		if !isSerializationFailure(err) {
			return err
		}
		logrus.WithError(err).WithField("attempt", attempt).Warn("transaction serialization failure, retrying")
	}
	return err
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// violatedConstraint names the unique index or column a violation hit, as far
// as the driver reports it: the constraint name on postgres, "table.column"
// on sqlite.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	msg := err.Error()
	if i := strings.Index(msg, sqliteUniqueFailed); i >= 0 {
		return strings.TrimSpace(msg[i+len(sqliteUniqueFailed):])
	}
	return ""
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == sqlStateUniqueViolation {
		return true
	}
	// sqlite reports constraint failures only through the message
	return strings.Contains(err.Error(), sqliteUniqueFailed)
}

func isSerializationFailure(err error) bool {
	return err != nil && sqlState(err) == sqlStateSerializationFailure
}
