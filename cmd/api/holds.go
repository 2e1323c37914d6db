// cmd/api/holds.go
// HTTP request handlers for the hold lifecycle. Holds are owned by the
// requesting patron (/patrons/:patron_id/holds/...) and the queue on a book
// is readable through the book (/books/:book_id/holds/). Unlike loans, a
// book may carry any number of holds; they queue first-come-first-served.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/inlibris/inlibris/internal/data"
	"github.com/inlibris/inlibris/internal/mason"
	"github.com/inlibris/inlibris/internal/validator"
)

// holdDocument maps a hold onto its Mason representation.
func holdDocument(hold *data.Hold, bookBarcode int64, patronBarcode *int64) mason.Document {
	return mason.Document{
		"id":             hold.ID,
		"book_barcode":   bookBarcode,
		"patron_barcode": patronBarcode,
		"holddate":       hold.Holddate,
		"expirationdate": hold.Expirationdate,
		"pickupdate":     hold.Pickupdate,
		"status":         hold.Status,
	}
}

// resolveHold looks up a hold addressed as /patrons/:patron_id/holds/:hold_id/
// and verifies it belongs to that patron. A hold owned by another patron (or
// detached by a patron delete) is reported as not found rather than
// forbidden, so hold ids cannot be probed across patrons.
func (app *applicationDependencies) resolveHold(w http.ResponseWriter, r *http.Request) (*data.Patron, *data.Hold) {
	patronID, err := app.readIDParam(r, "patron_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, nil
	}
	holdID, err := app.readIDParam(r, "hold_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, nil
	}

	patron, err := app.models.Patrons.Get(patronID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, "Patron not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, nil
	}

	hold, err := app.models.Holds.Get(holdID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No hold was found with the id %d", holdID))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, nil
	}

	if hold.PatronID == nil || *hold.PatronID != patron.ID {
		app.notFoundDetailResponse(w, r, fmt.Sprintf("No hold was found with the id %d", holdID))
		return nil, nil
	}

	return patron, hold
}

// createHoldHandler handles POST /patrons/:patron_id/holds/.
// The hold date is today; the expiration date defaults to 45 days out.
// Responds 201 with a Location header pointing at the new hold.
func (app *applicationDependencies) createHoldHandler(w http.ResponseWriter, r *http.Request) {
	patronID, err := app.readIDParam(r, "patron_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.AddHoldInput
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

	holddate := data.Today()
	expiration := holddate.AddDays(data.DefaultHoldDays)
	if input.Expirationdate != nil {
		expiration = *input.Expirationdate
	}

	hold := &data.Hold{
		BookID:         book.ID,
		PatronID:       &patron.ID,
		Holddate:       holddate,
		Expirationdate: expiration,
		Status:         data.DefaultHoldStatus,
	}

	err = app.models.Holds.Insert(hold)
	if err != nil {
		var conflict *data.HoldConflictError
		switch {
		case errors.As(err, &conflict):
			app.conflictResponse(w, r, holdConflictDetails(patron, conflict))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.Header().Set("Location", mason.HoldURL(patron.ID, hold.ID))
	w.WriteHeader(http.StatusCreated)
}

// holdConflictDetails renders a HoldConflictError for the error document.
func holdConflictDetails(patron *data.Patron, conflict *data.HoldConflictError) string {
	if conflict.OnLoan {
		return fmt.Sprintf("Patron '%d' currently has book '%d' on loan",
			patron.Barcode, conflict.BookBarcode)
	}
	return fmt.Sprintf("Patron '%d' already has a hold on book '%d'",
		patron.Barcode, conflict.BookBarcode)
}

// showHoldHandler handles GET /patrons/:patron_id/holds/:hold_id/.
func (app *applicationDependencies) showHoldHandler(w http.ResponseWriter, r *http.Request) {
	patron, hold := app.resolveHold(w, r)
	if hold == nil {
		return
	}

	book, err := app.models.Books.Get(hold.BookID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := holdDocument(hold, book.Barcode, &patron.Barcode)
	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.HoldURL(patron.ID, hold.ID)})
	body.AddControl("profile", mason.Control{Href: mason.HoldProfile})
	body.AddControl("author", mason.Control{Href: mason.PatronURL(patron.ID)})
	body.AddControlTargetBook(hold.BookID)
	body.AddControlHoldsBy(patron.ID)
	body.AddControlDeleteHold(patron.ID, hold.ID)

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteHoldHandler handles DELETE /patrons/:patron_id/holds/:hold_id/.
// Responds 204.
func (app *applicationDependencies) deleteHoldHandler(w http.ResponseWriter, r *http.Request) {
	_, hold := app.resolveHold(w, r)
	if hold == nil {
		return
	}

	if err := app.models.Holds.Delete(hold.ID); err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No hold was found with the id %d", hold.ID))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listHoldsByPatronHandler handles GET /patrons/:patron_id/holds/.
func (app *applicationDependencies) listHoldsByPatronHandler(w http.ResponseWriter, r *http.Request) {
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

	holds, err := app.models.Holds.Find(data.HoldFilter{PatronID: &patron.ID})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := mason.NewItems()
	for _, hold := range holds {
		book, err := app.models.Books.Get(hold.BookID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		item := holdDocument(hold, book.Barcode, &patron.Barcode)
		item.AddControl("self", mason.Control{Href: mason.HoldURL(patron.ID, hold.ID)})
		item.AddControl("profile", mason.Control{Href: mason.HoldProfile})
		body.AppendItem(item)
	}

	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.HoldsByPatronURL(patron.ID)})
	body.AddControl("author", mason.Control{Href: mason.PatronURL(patron.ID)})
	body.AddControl("profile", mason.Control{Href: mason.HoldProfile})
	body.AddControlAllPatrons()
	body.AddControlAllBooks()
	body.AddControlAddHold(patron.ID)

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listHoldsOnBookHandler handles GET /books/:book_id/holds/.
// Items appear in pickup-priority order: oldest hold first, ties broken by
// creation order.
func (app *applicationDependencies) listHoldsOnBookHandler(w http.ResponseWriter, r *http.Request) {
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

	holds, err := app.models.Holds.Find(data.HoldFilter{BookID: &book.ID})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := mason.NewItems()
	for _, hold := range holds {
		patronBarcode, err := app.patronBarcodeFor(hold.PatronID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		item := holdDocument(hold, book.Barcode, patronBarcode)
		if hold.PatronID != nil {
			item.AddControl("self", mason.Control{Href: mason.HoldURL(*hold.PatronID, hold.ID)})
		}
		item.AddControl("profile", mason.Control{Href: mason.HoldProfile})
		body.AppendItem(item)
	}

	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.HoldsOnBookURL(book.ID)})
	body.AddControl("profile", mason.Control{Href: mason.HoldProfile})
	body.AddControlTargetBook(book.ID)
	body.AddControlAllBooks()

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
