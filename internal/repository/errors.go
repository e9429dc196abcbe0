package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// SchemaErrorKind tells which part of the table shape rejected a statement.
type SchemaErrorKind int

const (
	// MissingColumn: the statement referenced a column the table does not have.
	MissingColumn SchemaErrorKind = iota + 1
	// MissingTable: the table itself has not been migrated.
	MissingTable
	// RejectedValue: a check constraint or enum type refused the value.
	RejectedValue
)

func (k SchemaErrorKind) String() string {
	switch k {
	case MissingColumn:
		return "missing column"
	case MissingTable:
		return "missing table"
	case RejectedValue:
		return "rejected value"
	}
	return "unknown"
}

// SchemaError reports that a statement failed because of the table's shape
// rather than because the store is unavailable.
type SchemaError struct {
	Kind SchemaErrorKind
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch (%s): %v", e.Kind, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Postgres SQLSTATE codes that indicate a schema-shape problem.
const (
	pgUndefinedColumn  = "42703"
	pgUndefinedTable   = "42P01"
	pgCheckViolation   = "23514"
	pgInvalidTextValue = "22P02" // invalid input value for enum
)

// translate maps driver errors into repository errors. Unknown errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedColumn:
			return &SchemaError{Kind: MissingColumn, Err: err}
		case pgUndefinedTable:
			return &SchemaError{Kind: MissingTable, Err: err}
		case pgCheckViolation, pgInvalidTextValue:
			return &SchemaError{Kind: RejectedValue, Err: err}
		}
	}
	return err
}

// SchemaErrorKindOf returns the kind of a schema error anywhere in err's chain.
func SchemaErrorKindOf(err error) (SchemaErrorKind, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// IsSchemaError reports whether err was caused by the table's shape.
func IsSchemaError(err error) bool {
	_, ok := SchemaErrorKindOf(err)
	return ok
}
