package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatronInsertAndGet(t *testing.T) {
	m := newTestModels(t)
	patrons, _ := seedLibrary(t, m)

	require.NotZero(t, patrons[0].ID)

	got, err := m.Patrons.Get(patrons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100001), got.Barcode)
	assert.Equal(t, "Hilma", got.Firstname)
	require.NotNil(t, got.Lastname)
	assert.Equal(t, "Kirjastontati", *got.Lastname)
	assert.Equal(t, "Staff", got.Group)
	assert.Equal(t, "2020-01-01", got.Regdate.String())
}

func TestPatronGetByBarcode(t *testing.T) {
	m := newTestModels(t)
	patrons, _ := seedLibrary(t, m)

	got, err := m.Patrons.GetByBarcode(100002)
	require.NoError(t, err)
	assert.Equal(t, patrons[1].ID, got.ID)

	_, err = m.Patrons.GetByBarcode(199999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPatronInsertDuplicateBarcode(t *testing.T) {
	m := newTestModels(t)
	seedLibrary(t, m)

	err := m.Patrons.Insert(&Patron{
		Barcode:   100001,
		Firstname: "Toinen",
		Email:     "toinen@test.com",
		Group:     DefaultPatronGroup,
		Status:    DefaultPatronStatus,
		Regdate:   Today(),
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "barcode", conflict.Field)
}

func TestPatronInsertDuplicateEmail(t *testing.T) {
	m := newTestModels(t)
	seedLibrary(t, m)

	err := m.Patrons.Insert(&Patron{
		Barcode:   100003,
		Firstname: "Toinen",
		Email:     "hilma@kirjasto.fi",
		Group:     DefaultPatronGroup,
		Status:    DefaultPatronStatus,
		Regdate:   Today(),
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)
}

func TestPatronGetAllOrder(t *testing.T) {
	m := newTestModels(t)
	seedLibrary(t, m)

	all, err := m.Patrons.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(100001), all[0].Barcode)
	assert.Equal(t, int64(100002), all[1].Barcode)
}

func TestPatronUpdate(t *testing.T) {
	m := newTestModels(t)
	patrons, _ := seedLibrary(t, m)

	patron := patrons[1]
	patron.Firstname = "Muutettu"
	patron.Email = "muutettu@test.com"
	require.NoError(t, m.Patrons.Update(patron))

	got, err := m.Patrons.Get(patron.ID)
	require.NoError(t, err)
	assert.Equal(t, "Muutettu", got.Firstname)
	assert.Equal(t, "muutettu@test.com", got.Email)
	// Regdate is immutable through Update.
	assert.Equal(t, "1999-12-31", got.Regdate.String())
}

func TestPatronUpdateConflict(t *testing.T) {
	m := newTestModels(t)
	patrons, _ := seedLibrary(t, m)

	patron := patrons[1]
	patron.Barcode = 100001
	err := m.Patrons.Update(patron)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "barcode", conflict.Field)
}

func TestPatronUpdateMissing(t *testing.T) {
	m := newTestModels(t)
	seedLibrary(t, m)

	err := m.Patrons.Update(&Patron{
		ID:        9999,
		Barcode:   100099,
		Firstname: "Aave",
		Email:     "aave@test.com",
		Group:     DefaultPatronGroup,
		Status:    DefaultPatronStatus,
	})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPatronDeleteNullifiesLoansAndHolds(t *testing.T) {
	m := newTestModels(t)
	patrons, books := seedLibrary(t, m)

	// Second patron holds the loans, first patron placed the holds.
	require.NoError(t, m.Patrons.Delete(patrons[1].ID))
	require.NoError(t, m.Patrons.Delete(patrons[0].ID))

	loan, err := m.Loans.GetByBook(books[0].ID)
	require.NoError(t, err)
	assert.Nil(t, loan.PatronID, "loan should survive with patron_id nullified")

	holds, err := m.Holds.Find(HoldFilter{BookID: &books[0].ID})
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Nil(t, holds[0].PatronID, "hold should survive with patron_id nullified")

	_, err = m.Patrons.Get(patrons[0].ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestPatronDeleteMissing(t *testing.T) {
	m := newTestModels(t)

	assert.ErrorIs(t, m.Patrons.Delete(42), ErrRecordNotFound)
	assert.ErrorIs(t, m.Patrons.Delete(0), ErrRecordNotFound)
}
