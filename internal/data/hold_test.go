package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldInsertAndGet(t *testing.T) {
	m := newTestModels(t)
	patrons, books := seedLibrary(t, m)

	holds, err := m.Holds.Find(HoldFilter{BookID: &books[0].ID})
	require.NoError(t, err)
	require.Len(t, holds, 1)

	got, err := m.Holds.Get(holds[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.PatronID)
	assert.Equal(t, patrons[0].ID, *got.PatronID)
	assert.Equal(t, "2020-04-02", got.Holddate.String())
	assert.Equal(t, "2020-05-17", got.Expirationdate.String())
	assert.Nil(t, got.Pickupdate)
	assert.Equal(t, DefaultHoldStatus, got.Status)

	_, err = m.Holds.Get(9999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestHoldInsertDuplicateOpenHold(t *testing.T) {
	m := newTestModels(t)
	patrons, books := seedLibrary(t, m)

	err := m.Holds.Insert(&Hold{
		BookID:         books[0].ID,
		PatronID:       &patrons[0].ID,
		Holddate:       Today(),
		Expirationdate: Today().AddDays(DefaultHoldDays),
		Status:         DefaultHoldStatus,
	})

	var conflict *HoldConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(200001), conflict.BookBarcode)
	assert.False(t, conflict.OnLoan)
}

func TestHoldInsertOnOwnLoan(t *testing.T) {
	m := newTestModels(t)
	patrons, books := seedLibrary(t, m)

	// Second patron has books[0] on loan and may not also hold it.
	err := m.Holds.Insert(&Hold{
		BookID:         books[0].ID,
		PatronID:       &patrons[1].ID,
		Holddate:       Today(),
		Expirationdate: Today().AddDays(DefaultHoldDays),
		Status:         DefaultHoldStatus,
	})

	var conflict *HoldConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(200001), conflict.BookBarcode)
	assert.True(t, conflict.OnLoan)
}

func TestHoldQueueOrder(t *testing.T) {
	m := newTestModels(t)
	patrons, books := seedLibrary(t, m)

	// An earlier hold by the second patron on the unloaned book, then a later
	// one by the first patron.
	early := &Hold{
		BookID:         books[1].ID,
		PatronID:       &patrons[1].ID,
		Holddate:       NewDate(2020, 3, 1),
		Expirationdate: NewDate(2020, 3, 1).AddDays(DefaultHoldDays),
		Status:         DefaultHoldStatus,
	}
	require.NoError(t, m.Holds.Insert(early))

	late := &Hold{
		BookID:         books[1].ID,
		PatronID:       &patrons[0].ID,
		Holddate:       NewDate(2020, 4, 10),
		Expirationdate: NewDate(2020, 4, 10).AddDays(DefaultHoldDays),
		Status:         DefaultHoldStatus,
	}
	require.NoError(t, m.Holds.Insert(late))

	queue, err := m.Holds.Find(HoldFilter{BookID: &books[1].ID})
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, early.ID, queue[0].ID, "earliest holddate goes first")
	assert.Equal(t, late.ID, queue[1].ID)
}

func TestHoldFindFilters(t *testing.T) {
	m := newTestModels(t)
	patrons, books := seedLibrary(t, m)

	holds, err := m.Holds.Find(HoldFilter{PatronID: &patrons[0].ID})
	require.NoError(t, err)
	require.Len(t, holds, 2)
	assert.Equal(t, books[0].ID, holds[0].BookID)
	assert.Equal(t, books[2].ID, holds[1].BookID)

	cutoff := NewDate(2020, 5, 1)
	holds, err = m.Holds.Find(HoldFilter{ExpiresBefore: &cutoff})
	require.NoError(t, err)
	assert.Empty(t, holds)

	cutoff = NewDate(2020, 5, 17)
	holds, err = m.Holds.Find(HoldFilter{ExpiresBefore: &cutoff})
	require.NoError(t, err)
	assert.Len(t, holds, 2)
}

func TestHoldDelete(t *testing.T) {
	m := newTestModels(t)
	_, books := seedLibrary(t, m)

	holds, err := m.Holds.Find(HoldFilter{BookID: &books[0].ID})
	require.NoError(t, err)
	require.Len(t, holds, 1)

	require.NoError(t, m.Holds.Delete(holds[0].ID))
	_, err = m.Holds.Get(holds[0].ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	assert.ErrorIs(t, m.Holds.Delete(holds[0].ID), ErrRecordNotFound)
}
