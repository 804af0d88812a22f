package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rehearsal-system/internal/status"
	"rehearsal-system/models"
)

// fakeActivityRecords keeps one activity in memory and honors the same
// revision contract as the database-backed implementation. conflicts makes
// the next n saves lose the revision race.
type fakeActivityRecords struct {
	mu        sync.Mutex
	activity  models.Activity
	conflicts int
	saves     int
}

func newFakeRecords(activity models.Activity) *fakeActivityRecords {
	return &fakeActivityRecords{activity: activity}
}

func (f *fakeActivityRecords) load(_ context.Context, activityID string) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if activityID != f.activity.ID {
		return nil, status.ErrActivityNotFound
	}
	clone := f.activity
	clone.Parts = make([]models.Part, len(f.activity.Parts))
	for i, part := range f.activity.Parts {
		clone.Parts[i] = part
		clone.Parts[i].Applicants = append([]string{}, part.Applicants...)
		clone.Parts[i].Participants = append([]string{}, part.Participants...)
	}
	return &clone, nil
}

func (f *fakeActivityRecords) save(_ context.Context, activity *models.Activity) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saves++
	if f.conflicts > 0 {
		f.conflicts--
		// Simulate a concurrent writer winning the race
		f.activity.Revision++
		return false, nil
	}
	if activity.Revision != f.activity.Revision {
		return false, nil
	}

	f.activity = *activity
	f.activity.Revision++
	return true, nil
}

func storeWith(records activityRecords, retries int) *SlotStore {
	return &SlotStore{records: records, retries: retries}
}

func violinActivity() models.Activity {
	return models.Activity{
		ID: "act1",
		Parts: []models.Part{
			{ID: "p1", Name: "Violin", Limitation: 2, Applicants: []string{}, Participants: []string{}},
		},
	}
}

func TestSlotStore_Update_AppliesMutation(t *testing.T) {
	records := newFakeRecords(violinActivity())
	store := storeWith(records, 3)

	activity, err := store.Update(context.Background(), "act1", func(a *models.Activity) error {
		_, applyErr := a.Apply("p1", "alice")
		return applyErr
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, activity.FindPart("p1").Applicants)
	assert.Equal(t, 1, records.saves)
}

func TestSlotStore_Update_RetriesOnConflict(t *testing.T) {
	records := newFakeRecords(violinActivity())
	records.conflicts = 2
	store := storeWith(records, 3)

	activity, err := store.Update(context.Background(), "act1", func(a *models.Activity) error {
		_, applyErr := a.Apply("p1", "alice")
		return applyErr
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, activity.FindPart("p1").Applicants)
	assert.Equal(t, 3, records.saves)
}

func TestSlotStore_Update_ConflictExhaustion(t *testing.T) {
	records := newFakeRecords(violinActivity())
	records.conflicts = 5
	store := storeWith(records, 3)

	_, err := store.Update(context.Background(), "act1", func(a *models.Activity) error {
		_, applyErr := a.Apply("p1", "alice")
		return applyErr
	})

	assert.ErrorIs(t, err, status.ErrConflict)
}

func TestSlotStore_Update_MutationErrorSkipsSave(t *testing.T) {
	activity := violinActivity()
	activity.Parts[0].Applicants = []string{"alice", "bob"}
	records := newFakeRecords(activity)
	store := storeWith(records, 3)

	_, err := store.Update(context.Background(), "act1", func(a *models.Activity) error {
		_, applyErr := a.Apply("p1", "carol")
		return applyErr
	})

	assert.ErrorIs(t, err, status.ErrCapacityExceeded)
	assert.Equal(t, 0, records.saves)

	// Stored state untouched
	stored, err := records.load(context.Background(), "act1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, stored.FindPart("p1").Applicants)
}

func TestSlotStore_Update_UnknownActivity(t *testing.T) {
	store := storeWith(newFakeRecords(violinActivity()), 3)

	_, err := store.Update(context.Background(), "missing", func(a *models.Activity) error {
		return nil
	})

	assert.ErrorIs(t, err, status.ErrActivityNotFound)
}

func TestSlotStore_ConcurrentApplies_RespectCapacity(t *testing.T) {
	records := newFakeRecords(violinActivity())
	// High retry budget so contention alone never fails a writer
	store := storeWith(records, 50)

	members := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	results := make(chan error, len(members))

	var wg sync.WaitGroup
	for _, member := range members {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := store.Update(context.Background(), "act1", func(a *models.Activity) error {
				_, applyErr := a.Apply("p1", userID)
				return applyErr
			})
			results <- err
		}(member)
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, status.ErrCapacityExceeded):
			rejected++
		}
	}

	stored, err := records.load(context.Background(), "act1")
	require.NoError(t, err)
	part := stored.FindPart("p1")

	// Never more applicants than the limitation, no matter the interleaving
	assert.LessOrEqual(t, len(part.Applicants), part.Limitation)
	assert.Equal(t, part.Limitation, succeeded)
	assert.Equal(t, len(members)-part.Limitation, rejected)
}
