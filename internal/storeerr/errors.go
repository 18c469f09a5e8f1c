// Package storeerr defines the error taxonomy returned by the learning-record
// store and maps engine-specific failures onto it.
//
// Every error leaving a repository is a *Error carrying one of four kinds.
// Callers branch with errors.Is against the sentinels:
//
//	if errors.Is(err, storeerr.ErrConflict) { ... }
package storeerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidArgument Kind = "invalid_argument"
	KindInternal        Kind = "internal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
)

// Postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Error is a classified store failure.
type Error struct {
	Kind Kind
	Op   string // e.g. "groups.create"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(sentinel(e.Kind).Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return ErrInternal
	}
}

func newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(op, format string, args ...any) error {
	return newf(KindNotFound, op, format, args...)
}

func Conflict(op, format string, args ...any) error {
	return newf(KindConflict, op, format, args...)
}

func InvalidArgument(op, format string, args ...any) error {
	return newf(KindInvalidArgument, op, format, args...)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Map classifies err for operation op. Already classified errors pass through
// unchanged; unique and foreign key violations raised by the engine become
// Conflict and NotFound; anything else is Internal.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Op: op, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Op: op, Msg: "unique constraint violated", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindNotFound, Op: op, Msg: "referenced row does not exist", Err: err}
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrConstraint {
		switch sqErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &Error{Kind: KindConflict, Op: op, Msg: "unique constraint violated", Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &Error{Kind: KindNotFound, Op: op, Msg: "referenced row does not exist", Err: err}
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case pgUniqueViolation:
			return &Error{Kind: KindConflict, Op: op, Msg: "unique constraint violated", Err: err}
		case pgForeignKeyViolation:
			return &Error{Kind: KindNotFound, Op: op, Msg: "referenced row does not exist", Err: err}
		}
	}

	return &Error{Kind: KindInternal, Op: op, Err: err}
}
