package data

import (
	"database/sql"
	"fmt"
)

// idColumn returns the auto-incrementing primary key declaration for the
// given driver. Everything else in the DDL is shared between PostgreSQL and
// SQLite: the $N placeholder style and RETURNING clauses used by the models
// work unchanged on both.
func idColumn(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "id bigserial PRIMARY KEY", nil
	case "sqlite3":
		return "id INTEGER PRIMARY KEY AUTOINCREMENT", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// CreateSchema creates the four tables if they do not already exist.
// The cascade and nullify rules are deliberately NOT declared here as
// ON DELETE actions; they are executed as explicit statements inside the
// delete transactions so the policy stays auditable in one place.
func CreateSchema(db *sql.DB, driver string) error {
	id, err := idColumn(driver)
	if err != nil {
		return err
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS patrons (
				%s,
				barcode   BIGINT NOT NULL UNIQUE,
				firstname TEXT NOT NULL,
				lastname  TEXT,
				email     TEXT NOT NULL UNIQUE,
				"group"   TEXT NOT NULL DEFAULT 'Customer',
				status    TEXT NOT NULL DEFAULT 'Active',
				regdate   DATE NOT NULL
			)`, id),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS books (
				%s,
				barcode     BIGINT NOT NULL UNIQUE,
				title       TEXT NOT NULL,
				author      TEXT,
				publisher   TEXT,
				pubyear     INTEGER NOT NULL,
				format      TEXT NOT NULL DEFAULT 'book',
				description TEXT NOT NULL DEFAULT '',
				loantime    INTEGER NOT NULL DEFAULT 28,
				renewlimit  INTEGER NOT NULL DEFAULT 10
			)`, id),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS loans (
				%s,
				book_id     BIGINT NOT NULL UNIQUE REFERENCES books (id),
				patron_id   BIGINT REFERENCES patrons (id),
				loandate    DATE NOT NULL,
				renewaldate DATE,
				duedate     DATE NOT NULL,
				renewed     INTEGER NOT NULL DEFAULT 0,
				status      TEXT NOT NULL DEFAULT 'Charged'
			)`, id),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS holds (
				%s,
				book_id        BIGINT NOT NULL REFERENCES books (id),
				patron_id      BIGINT REFERENCES patrons (id),
				holddate       DATE NOT NULL,
				expirationdate DATE NOT NULL,
				pickupdate     DATE,
				status         TEXT NOT NULL DEFAULT 'Requested'
			)`, id),
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
