// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/inlibris/inlibris/internal/mason"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the recoverPanic and rateLimit middlewares.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → rateLimit → router
//
// Every route lives under mason.BasePath. Item and collection paths carry a
// trailing slash, matching the hrefs advertised in the hypermedia controls.
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return Mason error documents.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	base := mason.BasePath

	// Entry point
	router.HandlerFunc(http.MethodGet, base+"/", app.entrypointHandler)

	// Patron CRUD routes
	router.HandlerFunc(http.MethodGet, base+"/patrons/", app.listPatronsHandler)
	router.HandlerFunc(http.MethodPost, base+"/patrons/", app.createPatronHandler)
	router.HandlerFunc(http.MethodGet, base+"/patrons/:patron_id/", app.showPatronHandler)
	router.HandlerFunc(http.MethodPut, base+"/patrons/:patron_id/", app.updatePatronHandler)
	router.HandlerFunc(http.MethodDelete, base+"/patrons/:patron_id/", app.deletePatronHandler)

	// Book CRUD routes
	router.HandlerFunc(http.MethodGet, base+"/books/", app.listBooksHandler)
	router.HandlerFunc(http.MethodPost, base+"/books/", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, base+"/books/:book_id/", app.showBookHandler)
	router.HandlerFunc(http.MethodPut, base+"/books/:book_id/", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, base+"/books/:book_id/", app.deleteBookHandler)

	// Loan lifecycle routes
	router.HandlerFunc(http.MethodGet, base+"/books/:book_id/loan/", app.showLoanHandler)
	router.HandlerFunc(http.MethodPut, base+"/books/:book_id/loan/", app.updateLoanHandler)
	router.HandlerFunc(http.MethodDelete, base+"/books/:book_id/loan/", app.deleteLoanHandler)
	router.HandlerFunc(http.MethodGet, base+"/patrons/:patron_id/loans/", app.listLoansByPatronHandler)
	router.HandlerFunc(http.MethodPost, base+"/patrons/:patron_id/loans/", app.createLoanHandler)

	// Hold lifecycle routes
	router.HandlerFunc(http.MethodGet, base+"/books/:book_id/holds/", app.listHoldsOnBookHandler)
	router.HandlerFunc(http.MethodGet, base+"/patrons/:patron_id/holds/", app.listHoldsByPatronHandler)
	router.HandlerFunc(http.MethodPost, base+"/patrons/:patron_id/holds/", app.createHoldHandler)
	router.HandlerFunc(http.MethodGet, base+"/patrons/:patron_id/holds/:hold_id/", app.showHoldHandler)
	router.HandlerFunc(http.MethodDelete, base+"/patrons/:patron_id/holds/:hold_id/", app.deleteHoldHandler)

	// Wrap with middleware: recoverPanic is outermost so it catches panics
	// from rateLimit and router alike.
	return app.recoverPanic(app.rateLimit(router))
}

// entrypointHandler handles GET on the API root. The response carries no
// entity fields, only the namespace declaration and the controls leading to
// the two top-level collections.
func (app *applicationDependencies) entrypointHandler(w http.ResponseWriter, r *http.Request) {
	body := mason.New()
	body.AddNamespace(mason.Namespace, mason.LinkRelationsURL)
	body.AddControlAllPatrons()
	body.AddControlAllBooks()

	err := app.writeMason(w, http.StatusOK, body, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
