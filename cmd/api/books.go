// cmd/api/books.go
// HTTP request handlers for the books resource.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/inlibris/inlibris/internal/data"
	"github.com/inlibris/inlibris/internal/mason"
	"github.com/inlibris/inlibris/internal/validator"
)

// bookDocument maps a book record onto its Mason representation, without
// any controls attached.
func bookDocument(book *data.Book) mason.Document {
	return mason.Document{
		"id":          book.ID,
		"barcode":     book.Barcode,
		"title":       book.Title,
		"author":      book.Author,
		"publisher":   book.Publisher,
		"pubyear":     book.Pubyear,
		"format":      book.Format,
		"description": book.Description,
		"loantime":    book.Loantime,
		"renewlimit":  book.Renewlimit,
	}
}

// listBooksHandler handles GET /books/.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := mason.NewItems()
	for _, book := range books {
		item := bookDocument(book)
		item.AddControl("self", mason.Control{Href: mason.BookURL(book.ID)})
		item.AddControl("profile", mason.Control{Href: mason.BookProfile})
		body.AppendItem(item)
	}

	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.BookCollectionURL()})
	body.AddControl("profile", mason.Control{Href: mason.BookProfile})
	body.AddControlAddBook()
	body.AddControlAllPatrons()

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createBookHandler handles POST /books/.
// On success it responds 201 with a Location header pointing at the new
// book and no body.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.BookInput

	err := app.readJSON(w, r, &input)
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

	book := input.ToBook()

	err = app.models.Books.Insert(book)
	if err != nil {
		var conflict *data.ConflictError
		switch {
		case errors.As(err, &conflict):
			app.conflictResponse(w, r, fmt.Sprintf(
				"Barcode '%v' already exists on another book", conflict.Value))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.Header().Set("Location", mason.BookURL(book.ID))
	w.WriteHeader(http.StatusCreated)
}

// showBookHandler handles GET /books/:book_id/.
// Besides the usual item controls, the document links to the book's loan
// and hold queue so clients can navigate the lifecycle state.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "book_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	book, err := app.models.Books.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No book was found with the id %d", id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	body := bookDocument(book)
	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.BookURL(book.ID)})
	body.AddControl("profile", mason.Control{Href: mason.BookProfile})
	body.AddControl("collection", mason.Control{Href: mason.BookCollectionURL()})
	body.AddControlLoanOf(book.ID)
	body.AddControlHoldsOn(book.ID)
	body.AddControlEditBook(book.ID)
	body.AddControlDeleteBook(book.ID)

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PUT /books/:book_id/.
// The request body is a full replacement document. Responds 204.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "book_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.BookInput
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

	book := input.ToBook()
	book.ID = id

	err = app.models.Books.Update(book)
	if err != nil {
		var conflict *data.ConflictError
		switch {
		case errors.As(err, &conflict):
			app.conflictResponse(w, r, fmt.Sprintf(
				"Another book already has the barcode '%v'", conflict.Value))
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No book was found with the id %d", id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteBookHandler handles DELETE /books/:book_id/.
// Deleting a book also removes every loan and hold on it, in one atomic
// operation. Responds 204.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "book_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Books.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No book was found with the id %d", id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
