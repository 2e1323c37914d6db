package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inlibris/inlibris/internal/data"
	"github.com/inlibris/inlibris/internal/mason"
)

func TestShowLoan(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[0].ID), "")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := decodeDocument(t, rr)
	assert.Equal(t, float64(200001), doc["book_barcode"])
	assert.Equal(t, float64(100002), doc["patron_barcode"])
	assert.Equal(t, "2020-04-02", doc["loandate"])
	assert.Equal(t, "2020-04-30", doc["duedate"])
	assert.Nil(t, doc["renewaldate"])
	assert.Equal(t, data.DefaultLoanStatus, doc["status"])

	controls := documentControls(t, doc)
	for _, name := range []string{"self", "profile", "author", "edit",
		mason.Namespace + ":target-book", mason.Namespace + ":loans-by", mason.Namespace + ":delete"} {
		assert.Contains(t, controls, name)
	}
}

func TestShowLoanUnloanedBook(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	// A known book with no loan is 204, not 404.
	rr := doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[1].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.Bytes())
}

func TestShowLoanUnknownBook(t *testing.T) {
	app := newTestApplication(t)
	seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(424242), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "Book not found", errorDetails(t, doc))
}

func TestCreateLoan(t *testing.T) {
	app := newTestApplication(t)
	patrons, books := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(patrons[0].ID), `{"book_barcode": 200002}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, mason.LoanOfBookURL(books[1].ID), rr.Header().Get("Location"))

	rr = doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[1].ID), "")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := decodeDocument(t, rr)
	assert.Equal(t, float64(100001), doc["patron_barcode"])
	assert.Equal(t, data.Today().String(), doc["loandate"])
	// Due date defaults to loandate plus the book's loan time.
	assert.Equal(t, data.Today().AddDays(data.DefaultLoantime).String(), doc["duedate"])
	assert.Equal(t, float64(0), doc["renewed"])
}

func TestCreateLoanExplicitDuedate(t *testing.T) {
	app := newTestApplication(t)
	patrons, books := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(patrons[0].ID),
		`{"book_barcode": 200002, "duedate": "2030-06-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[1].ID), "")
	doc := decodeDocument(t, rr)
	assert.Equal(t, "2030-06-01", doc["duedate"])
}

func TestCreateLoanBookAlreadyOut(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(patrons[0].ID), `{"book_barcode": 200001}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	doc := decodeDocument(t, rr)
	assert.Equal(t, "Patron '100002' already has loan with book '200001'", errorDetails(t, doc))
}

func TestCreateLoanUnknownBookBarcode(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(patrons[0].ID), `{"book_barcode": 299999}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "Book not found", errorDetails(t, doc))
}

func TestCreateLoanUnknownPatron(t *testing.T) {
	app := newTestApplication(t)
	seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(424242), `{"book_barcode": 200002}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "Patron not found", errorDetails(t, doc))
}

func TestCreateLoanValidation(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(patrons[0].ID), `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Contains(t, errorDetails(t, doc), "book_barcode: must be provided")
}

func TestCreateLoanMalformedDuedate(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(patrons[0].ID),
		`{"book_barcode": 200002, "duedate": "01.06.2030"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	decodeDocument(t, rr)
}

func TestUpdateLoan(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	body := `{
		"book_barcode": 200001,
		"patron_barcode": 100002,
		"loandate": "2020-04-02",
		"renewaldate": "2020-04-20",
		"duedate": "2020-05-18",
		"renewed": 1
	}`
	rr := doJSON(t, app, http.MethodPut, mason.LoanOfBookURL(books[0].ID), body)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[0].ID), "")
	doc := decodeDocument(t, rr)
	assert.Equal(t, "2020-04-20", doc["renewaldate"])
	assert.Equal(t, "2020-05-18", doc["duedate"])
	assert.Equal(t, float64(1), doc["renewed"])
}

func TestUpdateLoanReassignsPatron(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	body := `{
		"book_barcode": 200001,
		"patron_barcode": 100001,
		"loandate": "2020-04-02",
		"duedate": "2020-04-30"
	}`
	rr := doJSON(t, app, http.MethodPut, mason.LoanOfBookURL(books[0].ID), body)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[0].ID), "")
	doc := decodeDocument(t, rr)
	assert.Equal(t, float64(100001), doc["patron_barcode"])
}

func TestUpdateLoanNoLoanIsNoOp(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	body := `{
		"book_barcode": 200002,
		"patron_barcode": 100001,
		"loandate": "2020-04-02",
		"duedate": "2020-04-30"
	}`
	rr := doJSON(t, app, http.MethodPut, mason.LoanOfBookURL(books[1].ID), body)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// Still no loan afterwards.
	rr = doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[1].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestUpdateLoanUnknownPatronBarcode(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	body := `{
		"book_barcode": 200001,
		"patron_barcode": 199999,
		"loandate": "2020-04-02",
		"duedate": "2020-04-30"
	}`
	rr := doJSON(t, app, http.MethodPut, mason.LoanOfBookURL(books[0].ID), body)
	require.Equal(t, http.StatusNotFound, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "Patron not found", errorDetails(t, doc))
}

func TestUpdateLoanUnknownBook(t *testing.T) {
	app := newTestApplication(t)
	seedLibrary(t, app)

	body := `{
		"book_barcode": 200001,
		"patron_barcode": 100002,
		"loandate": "2020-04-02",
		"duedate": "2020-04-30"
	}`
	rr := doJSON(t, app, http.MethodPut, mason.LoanOfBookURL(424242), body)
	require.Equal(t, http.StatusNotFound, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "Book not found", errorDetails(t, doc))
}

func TestUpdateLoanValidation(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodPut, mason.LoanOfBookURL(books[0].ID), `{"book_barcode": 200001}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	details := errorDetails(t, decodeDocument(t, rr))
	assert.Contains(t, details, "patron_barcode: must be provided")
	assert.Contains(t, details, "loandate: must be provided")
	assert.Contains(t, details, "duedate: must be provided")
}

func TestDeleteLoanIsIdempotent(t *testing.T) {
	app := newTestApplication(t)
	_, books := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodDelete, mason.LoanOfBookURL(books[0].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[0].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	// Returning the book twice is still 204, as is returning a book that was
	// never out.
	rr = doJSON(t, app, http.MethodDelete, mason.LoanOfBookURL(books[0].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = doJSON(t, app, http.MethodDelete, mason.LoanOfBookURL(books[1].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestDeleteLoanUnknownBook(t *testing.T) {
	app := newTestApplication(t)
	seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodDelete, mason.LoanOfBookURL(424242), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteLoanFreesBookForNewLoan(t *testing.T) {
	app := newTestApplication(t)
	patrons, books := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodDelete, mason.LoanOfBookURL(books[0].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, app, http.MethodPost, mason.LoansByPatronURL(patrons[0].ID), `{"book_barcode": 200001}`)
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestListLoansByPatron(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodGet, mason.LoansByPatronURL(patrons[1].ID), "")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := decodeDocument(t, rr)
	items := documentItems(t, doc)
	require.Len(t, items, 2)
	assert.Equal(t, float64(200001), items[0]["book_barcode"])
	assert.Equal(t, float64(200003), items[1]["book_barcode"])

	controls := documentControls(t, doc)
	assert.Contains(t, controls, mason.Namespace+":add-loan")

	// The other patron has no loans; the listing is present but empty.
	rr = doJSON(t, app, http.MethodGet, mason.LoansByPatronURL(patrons[0].ID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	items = documentItems(t, decodeDocument(t, rr))
	assert.Empty(t, items)
}

func TestListLoansByUnknownPatron(t *testing.T) {
	app := newTestApplication(t)

	rr := doJSON(t, app, http.MethodGet, mason.LoansByPatronURL(424242), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
