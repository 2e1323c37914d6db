// Package data provides the data models and database interaction logic
// for the library API: patrons, books, and the loan/hold lifecycle rows
// that bind them together.
package data

import (
	"database/sql"
	"errors"
)

// Patron represents a single library-user record stored in the database.
// It maps directly to a row in the "patrons" table.
type Patron struct {
	ID        int64   `json:"id"`      // Unique identifier assigned by the database
	Barcode   int64   `json:"barcode"` // Stable external identifier on the patron's library card
	Firstname string  `json:"firstname"`
	Lastname  *string `json:"lastname"` // Optional; nil serializes as JSON null
	Email     string  `json:"email"`
	Group     string  `json:"group"`   // Patron group, e.g. "Customer" or "Staff"
	Status    string  `json:"status"`  // Account status, e.g. "Active"
	Regdate   Date    `json:"regdate"` // Registration date, set once at creation
}

// PatronModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting patron records.
type PatronModel struct {
	DB *sql.DB // Shared database connection pool
}

// checkUnique returns a ConflictError if another patron (id != excludeID)
// already uses the given barcode or email.
func (m PatronModel) checkUnique(patron *Patron, excludeID int64) error {
	var id int64

	query := `SELECT id FROM patrons WHERE barcode = $1 AND id <> $2`
	err := m.DB.QueryRow(query, patron.Barcode, excludeID).Scan(&id)
	if err == nil {
		return &ConflictError{Field: "barcode", Value: patron.Barcode}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	query = `SELECT id FROM patrons WHERE email = $1 AND id <> $2`
	err = m.DB.QueryRow(query, patron.Email, excludeID).Scan(&id)
	if err == nil {
		return &ConflictError{Field: "email", Value: patron.Email}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	return nil
}

// Insert adds a new patron record to the database. The database-assigned id
// is written back into the struct. Returns a ConflictError when the barcode
// or email is already taken.
func (m PatronModel) Insert(patron *Patron) error {
	if err := m.checkUnique(patron, 0); err != nil {
		return err
	}

	query := `
		INSERT INTO patrons (barcode, firstname, lastname, email, "group", status, regdate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := m.DB.QueryRow(
		query,
		patron.Barcode,
		patron.Firstname,
		patron.Lastname,
		patron.Email,
		patron.Group,
		patron.Status,
		patron.Regdate,
	).Scan(&patron.ID)

	if isUniqueViolation(err) {
		return &ConflictError{Field: "barcode", Value: patron.Barcode}
	}
	return err
}

// Get retrieves a single patron by its primary key.
// Returns ErrRecordNotFound if no patron with the given id exists.
func (m PatronModel) Get(id int64) (*Patron, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, barcode, firstname, lastname, email, "group", status, regdate
		FROM patrons
		WHERE id = $1`

	return m.scanOne(m.DB.QueryRow(query, id))
}

// GetByBarcode retrieves a single patron by its external barcode.
func (m PatronModel) GetByBarcode(barcode int64) (*Patron, error) {
	query := `
		SELECT id, barcode, firstname, lastname, email, "group", status, regdate
		FROM patrons
		WHERE barcode = $1`

	return m.scanOne(m.DB.QueryRow(query, barcode))
}

func (m PatronModel) scanOne(row *sql.Row) (*Patron, error) {
	var patron Patron
	err := row.Scan(
		&patron.ID,
		&patron.Barcode,
		&patron.Firstname,
		&patron.Lastname,
		&patron.Email,
		&patron.Group,
		&patron.Status,
		&patron.Regdate,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &patron, nil
}

// GetAll retrieves every patron in id order.
func (m PatronModel) GetAll() ([]*Patron, error) {
	query := `
		SELECT id, barcode, firstname, lastname, email, "group", status, regdate
		FROM patrons
		ORDER BY id ASC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patrons := []*Patron{}
	for rows.Next() {
		var patron Patron
		err := rows.Scan(
			&patron.ID,
			&patron.Barcode,
			&patron.Firstname,
			&patron.Lastname,
			&patron.Email,
			&patron.Group,
			&patron.Status,
			&patron.Regdate,
		)
		if err != nil {
			return nil, err
		}
		patrons = append(patrons, &patron)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return patrons, nil
}

// Update saves the modified fields of patron back to the database, keyed by
// patron.ID. Regdate is immutable and is not written. Returns a ConflictError
// when the new barcode or email belongs to another patron, and
// ErrRecordNotFound when the patron no longer exists.
func (m PatronModel) Update(patron *Patron) error {
	if err := m.checkUnique(patron, patron.ID); err != nil {
		return err
	}

	query := `
		UPDATE patrons
		SET barcode = $1, firstname = $2, lastname = $3, email = $4, "group" = $5, status = $6
		WHERE id = $7`

	result, err := m.DB.Exec(
		query,
		patron.Barcode,
		patron.Firstname,
		patron.Lastname,
		patron.Email,
		patron.Group,
		patron.Status,
		patron.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Field: "barcode", Value: patron.Barcode}
		}
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

// Delete removes the patron with the given id. Loans and holds that
// reference the patron are kept but their patron_id is set to NULL, all
// inside the same transaction as the patron delete, so loan and hold
// history survives the patron.
// Returns ErrRecordNotFound if no matching record exists.
func (m PatronModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	return runInTx(m.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE loans SET patron_id = NULL WHERE patron_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE holds SET patron_id = NULL WHERE patron_id = $1`, id); err != nil {
			return err
		}

		result, err := tx.Exec(`DELETE FROM patrons WHERE id = $1`, id)
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
	})
}
