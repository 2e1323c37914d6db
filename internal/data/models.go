// internal/data/models.go
package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Patrons PatronModel // Handles all database operations for the patrons table
	Books   BookModel   // Handles all database operations for the books table
	Loans   LoanModel   // Handles all database operations for the loans table
	Holds   HoldModel   // Handles all database operations for the holds table
}

// NewModels constructs a Models value wired up to the given database connection pool.
// Call this once during application startup and store the result in applicationDependencies.
func NewModels(db *sql.DB) Models {
	return Models{
		Patrons: PatronModel{DB: db},
		Books:   BookModel{DB: db},
		Loans:   LoanModel{DB: db},
		Holds:   HoldModel{DB: db},
	}
}

// ErrRecordNotFound is returned when a query finds no matching row.
var ErrRecordNotFound = errors.New("record not found")

// ConflictError reports a uniqueness violation on a specific field, carrying
// the colliding value so handlers can name it in the error document.
type ConflictError struct {
	Field string
	Value any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s '%v' already exists", e.Field, e.Value)
}

// isUniqueViolation reports whether err is a unique-constraint violation from
// either supported driver. Explicit pre-insert checks produce the friendlier
// typed errors; this is the backstop for concurrent writers racing past them.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// runInTx runs fn inside a transaction, committing on success and rolling
// back on error. The cascade and nullify rules depend on this: a parent
// delete and its dependent mutations are never observable half-applied.
func runInTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
