package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	// The postgres dialect emits $N placeholders, which the sqlite3 driver
	// also accepts, so one dialect serves both supported drivers.
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// qb builds the dynamic filter queries used by the loan and hold listings.
var qb = goqu.Dialect("postgres")

// Loan is the binding of exactly one book to one patron for a period.
// The unique constraint on book_id enforces at most one loan per book.
type Loan struct {
	ID          int64  `json:"id"`
	BookID      int64  `json:"book_id"`
	PatronID    *int64 `json:"patron_id"` // nil once the borrowing patron has been deleted
	Loandate    Date   `json:"loandate"`
	Renewaldate *Date  `json:"renewaldate"` // nil until the loan is first renewed
	Duedate     Date   `json:"duedate"`
	Renewed     int    `json:"renewed"`
	Status      string `json:"status"` // e.g. "Charged"
}

// AlreadyLoanedError is returned when a loan is requested for a book that is
// already out. PatronBarcode identifies the current holder; it is nil when
// the holder has since been deleted and the loan row's patron was nullified.
type AlreadyLoanedError struct {
	BookBarcode   int64
	PatronBarcode *int64
}

func (e *AlreadyLoanedError) Error() string {
	if e.PatronBarcode == nil {
		return fmt.Sprintf("book '%d' is already on loan", e.BookBarcode)
	}
	return fmt.Sprintf("patron '%d' already has loan with book '%d'", *e.PatronBarcode, e.BookBarcode)
}

// LoanFilter holds optional equality and range predicates for Find.
// Non-nil fields are combined with AND.
type LoanFilter struct {
	PatronID  *int64
	BookID    *int64
	Status    *string
	DueBefore *Date // duedate <= DueBefore
	DueAfter  *Date // duedate >= DueAfter
}

// LoanModel wraps a *sql.DB connection and provides the loan lifecycle
// operations: lookup by book, create with conflict reporting, atomic
// replace, and idempotent delete.
type LoanModel struct {
	DB *sql.DB // Shared database connection pool
}

const loanColumns = `id, book_id, patron_id, loandate, renewaldate, duedate, renewed, status`

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*Loan, error) {
	var (
		loan        Loan
		patronID    sql.NullInt64
		renewaldate sql.NullTime
	)
	err := row.Scan(
		&loan.ID,
		&loan.BookID,
		&patronID,
		&loan.Loandate,
		&renewaldate,
		&loan.Duedate,
		&loan.Renewed,
		&loan.Status,
	)
	if err != nil {
		return nil, err
	}
	if patronID.Valid {
		loan.PatronID = &patronID.Int64
	}
	if renewaldate.Valid {
		d := NewDate(renewaldate.Time.Year(), renewaldate.Time.Month(), renewaldate.Time.Day())
		loan.Renewaldate = &d
	}
	return &loan, nil
}

// GetByBook retrieves the loan for the given book, if any.
// Returns ErrRecordNotFound when the book has no loan; callers must check
// the book's existence separately to tell "no loan" from "no such book".
func (m LoanModel) GetByBook(bookID int64) (*Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE book_id = $1`

	loan, err := scanLoan(m.DB.QueryRow(query, bookID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return loan, nil
}

// checkAvailable returns an AlreadyLoanedError when the book already has a
// loan, identifying the current holder by barcode.
func checkAvailable(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, bookID int64) error {
	query := `
		SELECT b.barcode, p.barcode
		FROM loans l
		JOIN books b ON b.id = l.book_id
		LEFT JOIN patrons p ON p.id = l.patron_id
		WHERE l.book_id = $1`

	var (
		bookBarcode   int64
		patronBarcode sql.NullInt64
	)
	err := q.QueryRow(query, bookID).Scan(&bookBarcode, &patronBarcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	conflict := &AlreadyLoanedError{BookBarcode: bookBarcode}
	if patronBarcode.Valid {
		conflict.PatronBarcode = &patronBarcode.Int64
	}
	return conflict
}

// Insert creates a new loan. Returns an AlreadyLoanedError when the book
// already has one. The database-assigned id is written back into the struct.
func (m LoanModel) Insert(loan *Loan) error {
	if err := checkAvailable(m.DB, loan.BookID); err != nil {
		return err
	}

	query := `
		INSERT INTO loans (book_id, patron_id, loandate, renewaldate, duedate, renewed, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := m.DB.QueryRow(
		query,
		loan.BookID,
		loan.PatronID,
		loan.Loandate,
		loan.Renewaldate,
		loan.Duedate,
		loan.Renewed,
		loan.Status,
	).Scan(&loan.ID)

	if isUniqueViolation(err) {
		// Lost a race with a concurrent borrower; report who won.
		if conflict := checkAvailable(m.DB, loan.BookID); conflict != nil {
			return conflict
		}
	}
	return err
}

// Replace atomically swaps the existing loan on a book for a new row carrying
// the supplied fields. Deleting and reinserting inside one transaction means
// the unique book_id constraint is re-validated on every edit instead of
// being trusted to hold across partial updates.
// Returns ErrRecordNotFound when the book has no loan to replace.
func (m LoanModel) Replace(bookID int64, loan *Loan) error {
	return runInTx(m.DB, func(tx *sql.Tx) error {
		result, err := tx.Exec(`DELETE FROM loans WHERE book_id = $1`, bookID)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrRecordNotFound
		}

		query := `
			INSERT INTO loans (book_id, patron_id, loandate, renewaldate, duedate, renewed, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`

		loan.BookID = bookID
		return tx.QueryRow(
			query,
			loan.BookID,
			loan.PatronID,
			loan.Loandate,
			loan.Renewaldate,
			loan.Duedate,
			loan.Renewed,
			loan.Status,
		).Scan(&loan.ID)
	})
}

// DeleteByBook removes the loan on the given book, if one exists. Deleting
// when no loan exists is not an error: returning the book is idempotent.
func (m LoanModel) DeleteByBook(bookID int64) error {
	_, err := m.DB.Exec(`DELETE FROM loans WHERE book_id = $1`, bookID)
	return err
}

// Find retrieves loans matching the filter, in id order.
func (m LoanModel) Find(filter LoanFilter) ([]*Loan, error) {
	ds := qb.From("loans").
		Select("id", "book_id", "patron_id", "loandate", "renewaldate", "duedate", "renewed", "status").
		Order(goqu.C("id").Asc())

	if filter.PatronID != nil {
		ds = ds.Where(goqu.C("patron_id").Eq(*filter.PatronID))
	}
	if filter.BookID != nil {
		ds = ds.Where(goqu.C("book_id").Eq(*filter.BookID))
	}
	if filter.Status != nil {
		ds = ds.Where(goqu.C("status").Eq(*filter.Status))
	}
	if filter.DueBefore != nil {
		ds = ds.Where(goqu.C("duedate").Lte(filter.DueBefore.String()))
	}
	if filter.DueAfter != nil {
		ds = ds.Where(goqu.C("duedate").Gte(filter.DueAfter.String()))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := m.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []*Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return loans, nil
}
