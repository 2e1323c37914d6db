package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inlibris/inlibris/internal/data"
	"github.com/inlibris/inlibris/internal/mason"
)

func TestListPatrons(t *testing.T) {
	app := newTestApplication(t)
	seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodGet, mason.BasePath+"/patrons/", "")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := decodeDocument(t, rr)
	items := documentItems(t, doc)
	require.Len(t, items, 2)
	assert.Equal(t, float64(100001), items[0]["barcode"])
	assert.Equal(t, float64(100002), items[1]["barcode"])

	controls := documentControls(t, doc)
	assert.Contains(t, controls, mason.Namespace+":add-patron")
}

func TestCreatePatron(t *testing.T) {
	app := newTestApplication(t)

	body := `{"barcode": 100010, "firstname": "Uusi", "email": "uusi@test.com"}`
	rr := doJSON(t, app, http.MethodPost, mason.BasePath+"/patrons/", body)

	require.Equal(t, http.StatusCreated, rr.Code)
	location := rr.Header().Get("Location")
	require.NotEmpty(t, location)
	assert.Empty(t, rr.Body.Bytes())

	// The Location header points at a fetchable resource.
	rr = doJSON(t, app, http.MethodGet, location, "")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := decodeDocument(t, rr)
	assert.Equal(t, float64(100010), doc["barcode"])
	assert.Equal(t, "Uusi", doc["firstname"])
	assert.Nil(t, doc["lastname"])
	assert.Equal(t, data.DefaultPatronGroup, doc["group"])
	assert.Equal(t, data.DefaultPatronStatus, doc["status"])
	assert.Equal(t, data.Today().String(), doc["regdate"])
}

func TestCreatePatronDuplicateBarcode(t *testing.T) {
	app := newTestApplication(t)
	seedLibrary(t, app)

	body := `{"barcode": 100001, "firstname": "Kopio", "email": "kopio@test.com"}`
	rr := doJSON(t, app, http.MethodPost, mason.BasePath+"/patrons/", body)

	require.Equal(t, http.StatusConflict, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "There is already a patron with the barcode '100001' in the collection", errorDetails(t, doc))
}

func TestCreatePatronDuplicateEmail(t *testing.T) {
	app := newTestApplication(t)
	seedLibrary(t, app)

	body := `{"barcode": 100010, "firstname": "Kopio", "email": "hilma@kirjasto.fi"}`
	rr := doJSON(t, app, http.MethodPost, mason.BasePath+"/patrons/", body)

	require.Equal(t, http.StatusConflict, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Contains(t, errorDetails(t, doc), "email 'hilma@kirjasto.fi'")
}

func TestCreatePatronValidation(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"missing email", `{"barcode": 100010, "firstname": "Uusi"}`, "email: must be provided"},
		{"malformed email", `{"barcode": 100010, "firstname": "Uusi", "email": "nope"}`, "email: must be a valid email address"},
		{"barcode out of range", `{"barcode": 200001, "firstname": "Uusi", "email": "uusi@test.com"}`, "barcode: must be a patron barcode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, app, http.MethodPost, mason.BasePath+"/patrons/", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			doc := decodeDocument(t, rr)
			assert.Contains(t, errorDetails(t, doc), tt.detail)
		})
	}
}

func TestCreatePatronRejectsNonJSON(t *testing.T) {
	app := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, mason.BasePath+"/patrons/", strings.NewReader("barcode=100010"))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	decodeDocument(t, rr)
}

func TestCreatePatronRejectsUnknownFields(t *testing.T) {
	app := newTestApplication(t)

	body := `{"barcode": 100010, "firstname": "Uusi", "email": "uusi@test.com", "shoesize": 42}`
	rr := doJSON(t, app, http.MethodPost, mason.BasePath+"/patrons/", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestShowPatron(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodGet, mason.PatronURL(patrons[0].ID), "")
	require.Equal(t, http.StatusOK, rr.Code)

	doc := decodeDocument(t, rr)
	assert.Equal(t, float64(100001), doc["barcode"])
	assert.Equal(t, "2020-01-01", doc["regdate"])

	controls := documentControls(t, doc)
	for _, name := range []string{"self", "profile", "collection", "edit",
		mason.Namespace + ":loans-by", mason.Namespace + ":holds-by", mason.Namespace + ":delete"} {
		assert.Contains(t, controls, name)
	}
}

func TestShowPatronNotFound(t *testing.T) {
	app := newTestApplication(t)

	rr := doJSON(t, app, http.MethodGet, mason.PatronURL(424242), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "No patron was found with the id 424242", errorDetails(t, doc))
}

func TestUpdatePatron(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	body := `{"barcode": 100001, "firstname": "Muutettu", "lastname": "Nimi", "email": "muutettu@test.com", "group": "Staff"}`
	rr := doJSON(t, app, http.MethodPut, mason.PatronURL(patrons[0].ID), body)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, app, http.MethodGet, mason.PatronURL(patrons[0].ID), "")
	doc := decodeDocument(t, rr)
	assert.Equal(t, "Muutettu", doc["firstname"])
	assert.Equal(t, "muutettu@test.com", doc["email"])
	// Registration date is immutable through PUT.
	assert.Equal(t, "2020-01-01", doc["regdate"])
}

func TestUpdatePatronConflict(t *testing.T) {
	app := newTestApplication(t)
	patrons, _ := seedLibrary(t, app)

	body := `{"barcode": 100001, "firstname": "Testi", "email": "kayttaja@test.com"}`
	rr := doJSON(t, app, http.MethodPut, mason.PatronURL(patrons[1].ID), body)

	require.Equal(t, http.StatusConflict, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Equal(t, "Another patron already has the barcode '100001'", errorDetails(t, doc))
}

func TestUpdatePatronNotFound(t *testing.T) {
	app := newTestApplication(t)

	body := `{"barcode": 100010, "firstname": "Aave", "email": "aave@test.com"}`
	rr := doJSON(t, app, http.MethodPut, mason.PatronURL(424242), body)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeletePatronDetachesLoansAndHolds(t *testing.T) {
	app := newTestApplication(t)
	patrons, books := seedLibrary(t, app)

	rr := doJSON(t, app, http.MethodDelete, mason.PatronURL(patrons[1].ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, app, http.MethodGet, mason.PatronURL(patrons[1].ID), "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	// The loan survives with a null patron barcode.
	rr = doJSON(t, app, http.MethodGet, mason.LoanOfBookURL(books[0].ID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := decodeDocument(t, rr)
	assert.Nil(t, doc["patron_barcode"])
}

func TestDeletePatronNotFound(t *testing.T) {
	app := newTestApplication(t)

	rr := doJSON(t, app, http.MethodDelete, mason.PatronURL(424242), "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	doc := decodeDocument(t, rr)
	assert.Equal(t, fmt.Sprintf("No patron was found with the id %d", 424242), errorDetails(t, doc))
}
