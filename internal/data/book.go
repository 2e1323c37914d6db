package data

import (
	"database/sql"
	"errors"
)

// Book represents a single catalog item stored in the database.
// It maps directly to a row in the "books" table.
type Book struct {
	ID          int64   `json:"id"`      // Unique identifier assigned by the database
	Barcode     int64   `json:"barcode"` // Stable external identifier printed on the item
	Title       string  `json:"title"`
	Author      *string `json:"author"`    // Optional; nil serializes as JSON null
	Publisher   *string `json:"publisher"` // Optional
	Pubyear     int     `json:"pubyear"`
	Format      string  `json:"format"`      // Item format, e.g. "book" or "cd"
	Description string  `json:"description"` // Free text, often carries the ISBN
	Loantime    int     `json:"loantime"`    // Loan period in days, used to compute due dates
	Renewlimit  int     `json:"renewlimit"`  // Maximum number of renewals
}

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, and deleting book records.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

// checkUnique returns a ConflictError if another book (id != excludeID)
// already uses the given barcode.
func (m BookModel) checkUnique(book *Book, excludeID int64) error {
	var id int64
	query := `SELECT id FROM books WHERE barcode = $1 AND id <> $2`
	err := m.DB.QueryRow(query, book.Barcode, excludeID).Scan(&id)
	if err == nil {
		return &ConflictError{Field: "barcode", Value: book.Barcode}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

// Insert adds a new book record to the database. The database-assigned id is
// written back into the struct. Returns a ConflictError when the barcode is
// already taken.
func (m BookModel) Insert(book *Book) error {
	if err := m.checkUnique(book, 0); err != nil {
		return err
	}

	query := `
		INSERT INTO books (barcode, title, author, publisher, pubyear, format, description, loantime, renewlimit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := m.DB.QueryRow(
		query,
		book.Barcode,
		book.Title,
		book.Author,
		book.Publisher,
		book.Pubyear,
		book.Format,
		book.Description,
		book.Loantime,
		book.Renewlimit,
	).Scan(&book.ID)

	if isUniqueViolation(err) {
		return &ConflictError{Field: "barcode", Value: book.Barcode}
	}
	return err
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		SELECT id, barcode, title, author, publisher, pubyear, format, description, loantime, renewlimit
		FROM books
		WHERE id = $1`

	return m.scanOne(m.DB.QueryRow(query, id))
}

// GetByBarcode retrieves a single book by its external barcode.
func (m BookModel) GetByBarcode(barcode int64) (*Book, error) {
	query := `
		SELECT id, barcode, title, author, publisher, pubyear, format, description, loantime, renewlimit
		FROM books
		WHERE barcode = $1`

	return m.scanOne(m.DB.QueryRow(query, barcode))
}

func (m BookModel) scanOne(row *sql.Row) (*Book, error) {
	var book Book
	err := row.Scan(
		&book.ID,
		&book.Barcode,
		&book.Title,
		&book.Author,
		&book.Publisher,
		&book.Pubyear,
		&book.Format,
		&book.Description,
		&book.Loantime,
		&book.Renewlimit,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAll retrieves every book in id order.
func (m BookModel) GetAll() ([]*Book, error) {
	query := `
		SELECT id, barcode, title, author, publisher, pubyear, format, description, loantime, renewlimit
		FROM books
		ORDER BY id ASC`

	rows, err := m.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var book Book
		err := rows.Scan(
			&book.ID,
			&book.Barcode,
			&book.Title,
			&book.Author,
			&book.Publisher,
			&book.Pubyear,
			&book.Format,
			&book.Description,
			&book.Loantime,
			&book.Renewlimit,
		)
		if err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// Update saves the modified fields of book back to the database, keyed by
// book.ID. Returns a ConflictError when the new barcode belongs to another
// book, and ErrRecordNotFound when the book no longer exists.
func (m BookModel) Update(book *Book) error {
	if err := m.checkUnique(book, book.ID); err != nil {
		return err
	}

	query := `
		UPDATE books
		SET barcode = $1, title = $2, author = $3, publisher = $4, pubyear = $5,
		    format = $6, description = $7, loantime = $8, renewlimit = $9
		WHERE id = $10`

	result, err := m.DB.Exec(
		query,
		book.Barcode,
		book.Title,
		book.Author,
		book.Publisher,
		book.Pubyear,
		book.Format,
		book.Description,
		book.Loantime,
		book.Renewlimit,
		book.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Field: "barcode", Value: book.Barcode}
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

// Delete removes the book with the given id. Every loan and hold that
// references the book is deleted in the same transaction, so a removed
// catalog item never leaves dangling lifecycle rows behind.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	return runInTx(m.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM loans WHERE book_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM holds WHERE book_id = $1`, id); err != nil {
			return err
		}

		result, err := tx.Exec(`DELETE FROM books WHERE id = $1`, id)
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
