// cmd/api/patrons.go
// HTTP request handlers for the patrons resource. Each handler is a method
// on *applicationDependencies so it has access to the logger and database models.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/inlibris/inlibris/internal/data"
	"github.com/inlibris/inlibris/internal/mason"
	"github.com/inlibris/inlibris/internal/validator"
)

// patronDocument maps a patron record onto its Mason representation,
// without any controls attached.
func patronDocument(patron *data.Patron) mason.Document {
	return mason.Document{
		"id":        patron.ID,
		"barcode":   patron.Barcode,
		"firstname": patron.Firstname,
		"lastname":  patron.Lastname,
		"email":     patron.Email,
		"group":     patron.Group,
		"status":    patron.Status,
		"regdate":   patron.Regdate,
	}
}

// listPatronsHandler handles GET /patrons/.
// The response is a collection document whose items appear in creation order,
// plus an add control carrying the patron schema inline.
func (app *applicationDependencies) listPatronsHandler(w http.ResponseWriter, r *http.Request) {
	patrons, err := app.models.Patrons.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	body := mason.NewItems()
	for _, patron := range patrons {
		item := patronDocument(patron)
		item.AddControl("self", mason.Control{Href: mason.PatronURL(patron.ID)})
		item.AddControl("profile", mason.Control{Href: mason.PatronProfile})
		body.AppendItem(item)
	}

	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.PatronCollectionURL()})
	body.AddControl("profile", mason.Control{Href: mason.PatronProfile})
	body.AddControlAddPatron()
	body.AddControlAllBooks()

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createPatronHandler handles POST /patrons/.
// On success it responds 201 with a Location header pointing at the new
// patron and no body.
func (app *applicationDependencies) createPatronHandler(w http.ResponseWriter, r *http.Request) {
	var input data.PatronInput

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

	patron := input.ToPatron(data.Today())

	err = app.models.Patrons.Insert(patron)
	if err != nil {
		var conflict *data.ConflictError
		switch {
		case errors.As(err, &conflict):
			app.conflictResponse(w, r, fmt.Sprintf(
				"There is already a patron with the %s '%v' in the collection", conflict.Field, conflict.Value))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.Header().Set("Location", mason.PatronURL(patron.ID))
	w.WriteHeader(http.StatusCreated)
}

// showPatronHandler handles GET /patrons/:patron_id/.
func (app *applicationDependencies) showPatronHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "patron_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	patron, err := app.models.Patrons.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No patron was found with the id %d", id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	body := patronDocument(patron)
	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControl("self", mason.Control{Href: mason.PatronURL(patron.ID)})
	body.AddControl("profile", mason.Control{Href: mason.PatronProfile})
	body.AddControl("collection", mason.Control{Href: mason.PatronCollectionURL()})
	body.AddControlLoansBy(patron.ID)
	body.AddControlHoldsBy(patron.ID)
	body.AddControlEditPatron(patron.ID)
	body.AddControlDeletePatron(patron.ID)

	err = app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updatePatronHandler handles PUT /patrons/:patron_id/.
// The request body is a full replacement document; the registration date is
// immutable and carried over from the existing record. Responds 204.
func (app *applicationDependencies) updatePatronHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "patron_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input data.PatronInput
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

	existing, err := app.models.Patrons.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No patron was found with the id %d", id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	patron := input.ToPatron(existing.Regdate)
	patron.ID = id

	err = app.models.Patrons.Update(patron)
	if err != nil {
		var conflict *data.ConflictError
		switch {
		case errors.As(err, &conflict):
			app.conflictResponse(w, r, fmt.Sprintf(
				"Another patron already has the %s '%v'", conflict.Field, conflict.Value))
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No patron was found with the id %d", id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deletePatronHandler handles DELETE /patrons/:patron_id/.
// Deleting a patron keeps their loans and holds but detaches them, so
// borrowing history survives. Responds 204.
func (app *applicationDependencies) deletePatronHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "patron_id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Patrons.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundDetailResponse(w, r, fmt.Sprintf("No patron was found with the id %d", id))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
