package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/daos"
	"github.com/pocketbase/pocketbase/tools/types"

	"rehearsal-system/internal/status"
	"rehearsal-system/models"
	"rehearsal-system/monitoring"
)

// activityRecords is the persistence seam of the slot store. save reports
// false, nil when the stored revision no longer matches the loaded one.
type activityRecords interface {
	load(ctx context.Context, activityID string) (*models.Activity, error)
	save(ctx context.Context, activity *models.Activity) (bool, error)
}

// SlotStore holds activities and applies part mutations under optimistic
// concurrency. The activity document is the unit of atomicity: one mutation
// is a load, an in-memory change, and a compare-and-swap on the document
// revision, retried a bounded number of times.
type SlotStore struct {
	records activityRecords
	retries int
}

func NewSlotStore(dao *daos.Dao, retries int) *SlotStore {
	if retries < 1 {
		retries = 1
	}
	return &SlotStore{
		records: &daoActivityRecords{dao: dao},
		retries: retries,
	}
}

// Get loads one activity.
func (s *SlotStore) Get(ctx context.Context, activityID string) (*models.Activity, error) {
	return s.records.load(ctx, activityID)
}

// Update applies mutate to the activity and persists the result. When the
// compare-and-swap loses to a concurrent writer the activity is reloaded and
// mutate is re-applied against fresh state, up to the retry budget. An error
// from mutate aborts without persisting anything.
func (s *SlotStore) Update(ctx context.Context, activityID string, mutate func(*models.Activity) error) (*models.Activity, error) {
	for attempt := 0; attempt < s.retries; attempt++ {
		activity, err := s.records.load(ctx, activityID)
		if err != nil {
			return nil, err
		}

		if err := mutate(activity); err != nil {
			return nil, err
		}

		saved, err := s.records.save(ctx, activity)
		if err != nil {
			return nil, err
		}
		if saved {
			activity.Revision++
			return activity, nil
		}

		monitoring.TrackSaveConflict("retried")
	}

	monitoring.TrackSaveConflict("exhausted")
	return nil, status.ErrConflict
}

// daoActivityRecords persists activities through the PocketBase DAO. The
// conditional update goes through dbx directly so the revision check and the
// write are a single statement.
type daoActivityRecords struct {
	dao *daos.Dao
}

func (r *daoActivityRecords) load(_ context.Context, activityID string) (*models.Activity, error) {
	record, err := r.dao.FindRecordById(collectionActivities, activityID)
	if err != nil {
		return nil, status.ErrActivityNotFound
	}
	return decodeActivity(record)
}

func (r *daoActivityRecords) save(_ context.Context, activity *models.Activity) (bool, error) {
	raw, err := json.Marshal(activity.Parts)
	if err != nil {
		return false, fmt.Errorf("encode activity %s parts: %w", activity.ID, err)
	}

	result, err := r.dao.DB().
		Update(collectionActivities,
			dbx.Params{
				"parts":    string(raw),
				"revision": activity.Revision + 1,
				"updated":  types.NowDateTime(),
			},
			dbx.HashExp{
				"id":       activity.ID,
				"revision": activity.Revision,
			},
		).
		Execute()
	if err != nil {
		return false, fmt.Errorf("save activity %s: %w", activity.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save activity %s: %w", activity.ID, err)
	}
	return affected == 1, nil
}
