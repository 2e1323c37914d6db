package data

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

// Hold is a patron's reservation request on a book. Unlike loans, several
// holds may target the same book; they queue in first-come-first-served
// order for pickup priority.
type Hold struct {
	ID             int64  `json:"id"`
	BookID         int64  `json:"book_id"`
	PatronID       *int64 `json:"patron_id"` // nil once the requesting patron has been deleted
	Holddate       Date   `json:"holddate"`
	Expirationdate Date   `json:"expirationdate"`
	Pickupdate     *Date  `json:"pickupdate"` // nil until the hold is fulfilled
	Status         string `json:"status"`     // e.g. "Requested"
}

// HoldConflictError is returned when a hold request violates the conflict
// policy: the patron already holds the book, or currently has it on loan.
type HoldConflictError struct {
	BookBarcode int64
	OnLoan      bool // true when the conflict is an active loan rather than an earlier hold
}

func (e *HoldConflictError) Error() string {
	if e.OnLoan {
		return fmt.Sprintf("patron currently has book '%d' on loan", e.BookBarcode)
	}
	return fmt.Sprintf("patron already has a hold on book '%d'", e.BookBarcode)
}

// HoldFilter holds optional equality and range predicates for Find.
// Non-nil fields are combined with AND.
type HoldFilter struct {
	PatronID      *int64
	BookID        *int64
	Status        *string
	ExpiresBefore *Date // expirationdate <= ExpiresBefore
}

// HoldModel wraps a *sql.DB connection and provides the hold lifecycle
// operations.
type HoldModel struct {
	DB *sql.DB // Shared database connection pool
}

func scanHold(row rowScanner) (*Hold, error) {
	var (
		hold       Hold
		patronID   sql.NullInt64
		pickupdate sql.NullTime
	)
	err := row.Scan(
		&hold.ID,
		&hold.BookID,
		&patronID,
		&hold.Holddate,
		&hold.Expirationdate,
		&pickupdate,
		&hold.Status,
	)
	if err != nil {
		return nil, err
	}
	if patronID.Valid {
		hold.PatronID = &patronID.Int64
	}
	if pickupdate.Valid {
		d := NewDate(pickupdate.Time.Year(), pickupdate.Time.Month(), pickupdate.Time.Day())
		hold.Pickupdate = &d
	}
	return &hold, nil
}

// Get retrieves a single hold by its primary key.
// Returns ErrRecordNotFound if no hold with the given id exists.
func (m HoldModel) Get(id int64) (*Hold, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, book_id, patron_id, holddate, expirationdate, pickupdate, status
		FROM holds
		WHERE id = $1`

	hold, err := scanHold(m.DB.QueryRow(query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return hold, nil
}

// Insert creates a new hold after enforcing the conflict policy inside one
// transaction: a patron may not hold a book twice while an earlier hold of
// theirs on it is still open, and may not hold a book they currently have
// on loan. The database-assigned id is written back into the struct.
func (m HoldModel) Insert(hold *Hold) error {
	return runInTx(m.DB, func(tx *sql.Tx) error {
		var barcode int64

		// Open hold by the same patron on the same book?
		query := `
			SELECT b.barcode
			FROM holds h
			JOIN books b ON b.id = h.book_id
			WHERE h.book_id = $1 AND h.patron_id = $2 AND h.pickupdate IS NULL`
		err := tx.QueryRow(query, hold.BookID, hold.PatronID).Scan(&barcode)
		if err == nil {
			return &HoldConflictError{BookBarcode: barcode}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		// Book currently on loan to the same patron?
		query = `
			SELECT b.barcode
			FROM loans l
			JOIN books b ON b.id = l.book_id
			WHERE l.book_id = $1 AND l.patron_id = $2`
		err = tx.QueryRow(query, hold.BookID, hold.PatronID).Scan(&barcode)
		if err == nil {
			return &HoldConflictError{BookBarcode: barcode, OnLoan: true}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		insert := `
			INSERT INTO holds (book_id, patron_id, holddate, expirationdate, pickupdate, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`

		return tx.QueryRow(
			insert,
			hold.BookID,
			hold.PatronID,
			hold.Holddate,
			hold.Expirationdate,
			hold.Pickupdate,
			hold.Status,
		).Scan(&hold.ID)
	})
}

// Find retrieves holds matching the filter, in pickup-priority order:
// first by holddate, then by id so same-day holds keep creation order.
func (m HoldModel) Find(filter HoldFilter) ([]*Hold, error) {
	ds := qb.From("holds").
		Select("id", "book_id", "patron_id", "holddate", "expirationdate", "pickupdate", "status").
		Order(goqu.C("holddate").Asc(), goqu.C("id").Asc())

	if filter.PatronID != nil {
		ds = ds.Where(goqu.C("patron_id").Eq(*filter.PatronID))
	}
	if filter.BookID != nil {
		ds = ds.Where(goqu.C("book_id").Eq(*filter.BookID))
	}
	if filter.Status != nil {
		ds = ds.Where(goqu.C("status").Eq(*filter.Status))
	}
	if filter.ExpiresBefore != nil {
		ds = ds.Where(goqu.C("expirationdate").Lte(filter.ExpiresBefore.String()))
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

	holds := []*Hold{}
	for rows.Next() {
		hold, err := scanHold(rows)
		if err != nil {
			return nil, err
		}
		holds = append(holds, hold)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}

// Delete removes the hold with the given id.
// Returns ErrRecordNotFound if no matching record exists.
func (m HoldModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	result, err := m.DB.Exec(`DELETE FROM holds WHERE id = $1`, id)
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
	return nil
}
