package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rehearsal-system/internal/status"
)

func testActivity() *Activity {
	return &Activity{
		ID:      "act1",
		EventID: "evt1",
		Title:   "Evening rehearsal",
		Parts: []Part{
			{ID: "p1", Order: 1, Name: "Violin", Limitation: 2, Applicants: []string{}, Participants: []string{}},
			{ID: "p2", Order: 2, Name: "Cello", Limitation: 1, Applicants: []string{}, Participants: []string{}},
		},
	}
}

func TestActivity_Apply_FillsUpToLimitation(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("p1", "alice")
	require.NoError(t, err)
	_, err = a.Apply("p1", "bob")
	require.NoError(t, err)

	part, err := a.Apply("p1", "carol")
	assert.ErrorIs(t, err, status.ErrCapacityExceeded)
	assert.Nil(t, part)

	// Rejection leaves the part unchanged
	assert.Equal(t, []string{"alice", "bob"}, a.FindPart("p1").Applicants)
}

func TestActivity_Apply_ReopensAfterCancel(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("p1", "alice")
	require.NoError(t, err)
	_, err = a.Apply("p1", "bob")
	require.NoError(t, err)

	_, err = a.Apply("p1", "carol")
	require.ErrorIs(t, err, status.ErrCapacityExceeded)

	_, err = a.Cancel("p1", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, a.FindPart("p1").Applicants)

	_, err = a.Apply("p1", "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, a.FindPart("p1").Applicants)
}

func TestActivity_Apply_MovesBetweenParts(t *testing.T) {
	a := &Activity{
		ID: "act1",
		Parts: []Part{
			{ID: "p1", Name: "Violin", Limitation: 1, Applicants: []string{}},
			{ID: "p2", Name: "Cello", Limitation: 1, Applicants: []string{}},
		},
	}

	_, err := a.Apply("p1", "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, a.FindPart("p1").Applicants)

	// Applying to another part of the same activity moves the application
	_, err = a.Apply("p2", "alice")
	require.NoError(t, err)
	assert.Empty(t, a.FindPart("p1").Applicants)
	assert.Equal(t, []string{"alice"}, a.FindPart("p2").Applicants)
}

func TestActivity_Apply_SingleSlotPerActivity(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("p1", "alice")
	require.NoError(t, err)
	_, err = a.Apply("p2", "alice")
	require.NoError(t, err)
	_, err = a.Apply("p1", "alice")
	require.NoError(t, err)

	held := 0
	for _, part := range a.Parts {
		for _, id := range part.Applicants {
			if id == "alice" {
				held++
			}
		}
	}
	assert.Equal(t, 1, held)
	assert.Equal(t, []string{"alice"}, a.FindPart("p1").Applicants)
}

func TestActivity_Apply_RejectionKeepsPreviousApplication(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("p2", "alice")
	require.NoError(t, err)

	// Fill p1 completely
	_, err = a.Apply("p1", "bob")
	require.NoError(t, err)
	_, err = a.Apply("p1", "carol")
	require.NoError(t, err)

	// Alice tries to switch into the full part; nothing may change,
	// including her existing claim on p2.
	_, err = a.Apply("p1", "alice")
	require.ErrorIs(t, err, status.ErrCapacityExceeded)
	assert.Equal(t, []string{"alice"}, a.FindPart("p2").Applicants)
	assert.Equal(t, []string{"bob", "carol"}, a.FindPart("p1").Applicants)
}

func TestActivity_Apply_Idempotent(t *testing.T) {
	a := testActivity()

	first, err := a.Apply("p1", "alice")
	require.NoError(t, err)
	second, err := a.Apply("p1", "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"alice"}, a.FindPart("p1").Applicants)
}

func TestActivity_Apply_UnknownPart(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("missing", "alice")
	assert.ErrorIs(t, err, status.ErrPartNotFound)
}

func TestActivity_Cancel_Idempotent(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("p1", "alice")
	require.NoError(t, err)

	part, err := a.Cancel("p1", "alice")
	require.NoError(t, err)
	assert.Empty(t, part.Applicants)

	// Second cancel is a no-op, not an error
	part, err = a.Cancel("p1", "alice")
	require.NoError(t, err)
	assert.Empty(t, part.Applicants)
}

func TestActivity_Cancel_UnknownPart(t *testing.T) {
	a := testActivity()

	_, err := a.Cancel("missing", "alice")
	assert.ErrorIs(t, err, status.ErrPartNotFound)
}

func TestActivity_AddPart(t *testing.T) {
	a := &Activity{ID: "act1", Parts: []Part{}}

	part := a.AddPart("Trumpet", 3, 1)

	require.Len(t, a.Parts, 1)
	assert.NotEmpty(t, part.ID)
	assert.Equal(t, "Trumpet", part.Name)
	assert.Equal(t, 3, part.Limitation)
	assert.Equal(t, []string{}, part.Applicants)
	assert.Equal(t, []string{}, part.Participants)
}

func TestActivity_UpdatePart_LoweringLimitationKeepsApplicants(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("p1", "alice")
	require.NoError(t, err)
	_, err = a.Apply("p1", "bob")
	require.NoError(t, err)

	lower := 1
	part, err := a.UpdatePart("p1", PartPatch{Limitation: &lower})
	require.NoError(t, err)

	// Nobody is evicted; the part is transiently over capacity
	assert.Equal(t, 1, part.Limitation)
	assert.Equal(t, []string{"alice", "bob"}, part.Applicants)

	// New applies are rejected until the part drains below the limit
	_, err = a.Apply("p1", "carol")
	assert.ErrorIs(t, err, status.ErrCapacityExceeded)
}

func TestActivity_UpdatePart_PartialPatch(t *testing.T) {
	a := testActivity()

	name := "First violin"
	part, err := a.UpdatePart("p1", PartPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "First violin", part.Name)
	assert.Equal(t, 2, part.Limitation)
}

func TestActivity_RemovePart(t *testing.T) {
	a := testActivity()

	_, err := a.Apply("p1", "alice")
	require.NoError(t, err)

	require.NoError(t, a.RemovePart("p1"))
	assert.Nil(t, a.FindPart("p1"))
	assert.ErrorIs(t, a.RemovePart("p1"), status.ErrPartNotFound)
}
