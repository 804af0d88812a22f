package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/daos"
	pbmodels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/tools/types"

	"rehearsal-system/internal/status"
	"rehearsal-system/models"
)

// ActivityService owns the activity lifecycle. Parts have no lifecycle of
// their own; they are created and removed only through PartService.
type ActivityService struct {
	dao   *daos.Dao
	authz *AuthzService
}

func NewActivityService(dao *daos.Dao, authz *AuthzService) *ActivityService {
	return &ActivityService{dao: dao, authz: authz}
}

type CreateActivityInput struct {
	EventID     string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

type UpdateActivityInput struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

func (s *ActivityService) Create(callerID string, callerRole models.UserRole, input CreateActivityInput) (*models.Activity, error) {
	event, err := findEvent(s.dao, input.EventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireManage(callerID, callerRole, event.OrganizationID); err != nil {
		return nil, err
	}

	collection, err := s.dao.FindCollectionByNameOrId(collectionActivities)
	if err != nil {
		return nil, fmt.Errorf("find activities collection: %w", err)
	}

	record := pbmodels.NewRecord(collection)
	record.Set("event", input.EventID)
	record.Set("title", input.Title)
	record.Set("description", input.Description)
	if !input.StartTime.IsZero() {
		start, _ := types.ParseDateTime(input.StartTime)
		record.Set("start_time", start)
	}
	if !input.EndTime.IsZero() {
		end, _ := types.ParseDateTime(input.EndTime)
		record.Set("end_time", end)
	}
	record.Set("parts", []models.Part{})
	record.Set("revision", 0)

	var created *models.Activity
	err = s.dao.RunInTransaction(func(txDao *daos.Dao) error {
		if err := txDao.SaveRecord(record); err != nil {
			return fmt.Errorf("save activity: %w", err)
		}

		eventRecord, err := txDao.FindRecordById(collectionEvents, input.EventID)
		if err != nil {
			return status.ErrEventNotFound
		}
		eventRecord.Set("activities", append(eventRecord.GetStringSlice("activities"), record.Id))
		if err := txDao.SaveRecord(eventRecord); err != nil {
			return fmt.Errorf("save event %s: %w", input.EventID, err)
		}

		created, err = decodeActivity(record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ActivityService) Update(callerID string, callerRole models.UserRole, activityID string, input UpdateActivityInput) (*models.Activity, error) {
	record, err := s.dao.FindRecordById(collectionActivities, activityID)
	if err != nil {
		return nil, status.ErrActivityNotFound
	}

	event, err := findEvent(s.dao, record.GetString("event"))
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireManage(callerID, callerRole, event.OrganizationID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		record.Set("title", *input.Title)
	}
	if input.Description != nil {
		record.Set("description", *input.Description)
	}
	if input.StartTime != nil {
		start, _ := types.ParseDateTime(*input.StartTime)
		record.Set("start_time", start)
	}
	if input.EndTime != nil {
		end, _ := types.ParseDateTime(*input.EndTime)
		record.Set("end_time", end)
	}

	if err := s.dao.SaveRecord(record); err != nil {
		return nil, fmt.Errorf("save activity %s: %w", activityID, err)
	}
	return decodeActivity(record)
}

func (s *ActivityService) Delete(callerID string, callerRole models.UserRole, activityID string) error {
	record, err := s.dao.FindRecordById(collectionActivities, activityID)
	if err != nil {
		return status.ErrActivityNotFound
	}

	event, err := findEvent(s.dao, record.GetString("event"))
	if err != nil {
		return err
	}
	if err := s.authz.RequireManage(callerID, callerRole, event.OrganizationID); err != nil {
		return err
	}

	return s.dao.RunInTransaction(func(txDao *daos.Dao) error {
		if err := txDao.DeleteRecord(record); err != nil {
			return fmt.Errorf("delete activity %s: %w", activityID, err)
		}

		eventRecord, err := txDao.FindRecordById(collectionEvents, event.ID)
		if err != nil {
			return status.ErrEventNotFound
		}
		ids := eventRecord.GetStringSlice("activities")
		kept := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != activityID {
				kept = append(kept, id)
			}
		}
		eventRecord.Set("activities", kept)
		if err := txDao.SaveRecord(eventRecord); err != nil {
			return fmt.Errorf("save event %s: %w", event.ID, err)
		}
		return nil
	})
}
