// cmd/api/loans.go
// HTTP request handlers for the loan lifecycle. A loan is addressed through
// its book (/books/:book_id/loan/) because a book can be out at most once;
// new loans are created under the borrowing patron (/patrons/:patron_id/loans/).
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/inlibris/inlibris/internal/data"
	"github.com/inlibris/inlibris/internal/mason"
	"github.com/inlibris/inlibris/internal/validator"
)

// patronBarcodeFor resolves the barcode of the patron referenced by a
// nullable patron_id. Returns nil when the reference was nullified by a
// patron delete.
func (app *applicationDependencies) patronBarcodeFor(patronID *int64) (*int64, error) {
	if patronID == nil {
		return nil, nil
	}
	patron, err := app.models.Patrons.Get(*patronID)
	if err != nil {
		return nil, err
	}
	return &patron.Barcode, nil
}

// loanDocument maps a loan onto its Mason representation. Loans are
// presented in terms of barcodes, not internal ids: that is what circulation
// staff scan.
func loanDocument(loan *data.Loan, bookBarcode int64, patronBarcode *int64) mason.Document {
	return mason.Document{
		"id":             loan.ID,
		"book_barcode":   bookBarcode,
		"patron_barcode": patronBarcode,
		"loandate":       loan.Loandate,
		"renewaldate":    loan.Renewaldate,
		"duedate":        loan.Duedate,
		"renewed":        loan.Renewed,
		"status":         loan.Status,
	}
}

// showLoanHandler handles GET /books/:book_id/loan/.
// An unknown book is a 404; a known book with no loan responds 204 with no
// body, which is how clients distinguish "available" from "no such book".
func (app *applicationDependencies) showLoanHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := app.readIDParam(r, "book_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(bookID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	loan, err := app.models.Loans.GetByBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			w.WriteHeader(http.StatusNoContent)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	patronBarcode, err := app.patronBarcodeFor(loan.PatronID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := loanDocument(loan, book.Barcode, patronBarcode)
	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.LoanOfBookURL(bookID)})
	body.AddControl("profile", mason.Control{Href: mason.LoanProfile})
	if loan.PatronID != nil {
		body.AddControl("author", mason.Control{Href: mason.PatronURL(*loan.PatronID)})
		body.AddControlLoansBy(*loan.PatronID)
	}
	body.AddControlTargetBook(bookID)
	body.AddControlAllBooks()
	body.AddControlAllPatrons()
	body.AddControlEditLoan(bookID)
	body.AddControlDeleteLoan(bookID)

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createLoanHandler handles POST /patrons/:patron_id/loans/.
// The patron is taken from the URL and the book is resolved by barcode from
// the body. The loan date is today; the due date defaults to the loan date
// plus the book's loan time. Responds 201 with a Location header pointing
// at the book's loan resource.
func (app *applicationDependencies) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	patronID, err := app.readIDParam(r, "patron_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.AddLoanInput
	err = app.readJSON(w, r, &input)
	switch {
	case errors.Is(err, errNotJSON):
		app.unsupportedMediaTypeResponse(w, r)
		return
	case err != nil:
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if input.Validate(v); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	patron, err := app.models.Patrons.Get(patronID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Patron not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	book, err := app.models.Books.GetByBarcode(input.BookBarcode)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	loandate := data.Today()
	duedate := loandate.AddDays(book.Loantime)
	if input.Duedate != nil {
		duedate = *input.Duedate
	}

	loan := &data.Loan{
		BookID:   book.ID,
		PatronID: &patron.ID,
		Loandate: loandate,
		Duedate:  duedate,
		Status:   data.DefaultLoanStatus,
	}

	err = app.models.Loans.Insert(loan)
	if err != nil {
		var conflict *data.AlreadyLoanedError
		switch {
		case errors.As(err, &conflict):
			app.conflictResponse(w, r, loanConflictDetails(conflict))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.Header().Set("Location", mason.LoanOfBookURL(book.ID))
	w.WriteHeader(http.StatusCreated)
}

// loanConflictDetails renders an AlreadyLoanedError for the error document,
// naming the patron currently holding the book when one is known.
func loanConflictDetails(conflict *data.AlreadyLoanedError) string {
	if conflict.PatronBarcode == nil {
		return fmt.Sprintf("Book '%d' is already on loan", conflict.BookBarcode)
	}
	return fmt.Sprintf("Patron '%d' already has loan with book '%d'",
		*conflict.PatronBarcode, conflict.BookBarcode)
}

// updateLoanHandler handles PUT /books/:book_id/loan/.
// The body is a full replacement document, not a patch: the existing loan
// row is atomically swapped for a new one so the one-loan-per-book
// constraint is re-validated on every edit. Editing a book with no loan is
// a no-op and responds 204.
func (app *applicationDependencies) updateLoanHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := app.readIDParam(r, "book_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.EditLoanInput
	err = app.readJSON(w, r, &input)
	switch {
	case errors.Is(err, errNotJSON):
		app.unsupportedMediaTypeResponse(w, r)
		return
	case err != nil:
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if input.Validate(v); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	patron, err := app.models.Patrons.GetByBarcode(input.PatronBarcode)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Patron not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if _, err = app.models.Books.Get(bookID); err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	loan := input.ToLoan(bookID, patron.ID)

	err = app.models.Loans.Replace(bookID, loan)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			// Nothing to edit; an un-loaned book is not an error.
			w.WriteHeader(http.StatusNoContent)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// deleteLoanHandler handles DELETE /books/:book_id/loan/.
// Returning a book that is not out is already satisfied, so the response is
// 204 whether or not a loan existed. An unknown book is still a 404.
func (app *applicationDependencies) deleteLoanHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := app.readIDParam(r, "book_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	if _, err = app.models.Books.Get(bookID); err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Book not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if err = app.models.Loans.DeleteByBook(bookID); err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listLoansByPatronHandler handles GET /patrons/:patron_id/loans/.
func (app *applicationDependencies) listLoansByPatronHandler(w http.ResponseWriter, r *http.Request) {
	patronID, err := app.readIDParam(r, "patron_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	patron, err := app.models.Patrons.Get(patronID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Patron not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	loans, err := app.models.Loans.Find(data.LoanFilter{PatronID: &patron.ID})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := mason.NewItems()
	for _, loan := range loans {
		book, err := app.models.Books.Get(loan.BookID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		item := loanDocument(loan, book.Barcode, &patron.Barcode)
		item.AddControl("self", mason.Control{Href: mason.LoanOfBookURL(loan.BookID)})
		item.AddControl("profile", mason.Control{Href: mason.LoanProfile})
		body.AppendItem(item)
	}

	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.LoansByPatronURL(patron.ID)})
	body.AddControl("author", mason.Control{Href: mason.PatronURL(patron.ID)})
	body.AddControl("profile", mason.Control{Href: mason.LoanProfile})
	body.AddControlAllPatrons()
	body.AddControlAllBooks()
	body.AddControlAddLoan(patron.ID)

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
