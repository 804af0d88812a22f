package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/daos"
	pbmodels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/tools/types"

	"rehearsal-system/config"
	"rehearsal-system/internal/status"
	"rehearsal-system/models"
)

// EventService owns the event lifecycle. Events are never hard-deleted;
// deletion flips the soft-delete flag and hides the event from listings.
type EventService struct {
	dao   *daos.Dao
	authz *AuthzService
	cfg   *config.Config
}

func NewEventService(dao *daos.Dao, authz *AuthzService, cfg *config.Config) *EventService {
	return &EventService{dao: dao, authz: authz, cfg: cfg}
}

type CreateEventInput struct {
	OrganizationID string
	Description    string
	Location       string
	EventDate      time.Time
}

type UpdateEventInput struct {
	Description *string
	Location    *string
	EventDate   *time.Time
}

func (s *EventService) Create(callerID string, callerRole models.UserRole, input CreateEventInput) (*models.Event, error) {
	if input.Description == "" || input.Location == "" || input.EventDate.IsZero() {
		return nil, fmt.Errorf("event: description, location and event date are required")
	}

	if err := s.authz.RequireManage(callerID, callerRole, input.OrganizationID); err != nil {
		return nil, err
	}

	collection, err := s.dao.FindCollectionByNameOrId(collectionEvents)
	if err != nil {
		return nil, fmt.Errorf("find events collection: %w", err)
	}

	record := pbmodels.NewRecord(collection)
	record.Set("organization", input.OrganizationID)
	record.Set("created_by", callerID)
	record.Set("description", input.Description)
	record.Set("location", input.Location)
	date, _ := types.ParseDateTime(input.EventDate)
	record.Set("event_date", date)
	record.Set("status", string(models.EventStatusActive))
	record.Set("is_closed", false)
	record.Set("is_participants_confirmed", false)
	record.Set("confirmed_participants", []string{})
	record.Set("absent_applicants", []string{})
	record.Set("is_deleted", false)

	if err := s.dao.SaveRecord(record); err != nil {
		return nil, fmt.Errorf("save event: %w", err)
	}
	return decodeEvent(record)
}

func (s *EventService) Update(callerID string, callerRole models.UserRole, eventID string, input UpdateEventInput) (*models.Event, error) {
	event, err := findEvent(s.dao, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireManage(callerID, callerRole, event.OrganizationID); err != nil {
		return nil, err
	}

	record, err := s.dao.FindRecordById(collectionEvents, eventID)
	if err != nil {
		return nil, status.ErrEventNotFound
	}

	if input.Description != nil {
		record.Set("description", *input.Description)
	}
	if input.Location != nil {
		record.Set("location", *input.Location)
	}
	if input.EventDate != nil {
		date, _ := types.ParseDateTime(*input.EventDate)
		record.Set("event_date", date)
	}

	if err := s.dao.SaveRecord(record); err != nil {
		return nil, fmt.Errorf("save event %s: %w", eventID, err)
	}
	return decodeEvent(record)
}

// SoftDelete hides the event. Its activities stay in place but become
// unreachable through listings.
func (s *EventService) SoftDelete(callerID string, callerRole models.UserRole, eventID string) error {
	event, err := findEvent(s.dao, eventID)
	if err != nil {
		return err
	}
	if err := s.authz.RequireManage(callerID, callerRole, event.OrganizationID); err != nil {
		return err
	}

	record, err := s.dao.FindRecordById(collectionEvents, eventID)
	if err != nil {
		return status.ErrEventNotFound
	}
	record.Set("is_deleted", true)
	if err := s.dao.SaveRecord(record); err != nil {
		return fmt.Errorf("save event %s: %w", eventID, err)
	}
	return nil
}

// ListByOrganization returns the organization's visible events sorted by
// event date.
func (s *EventService) ListByOrganization(organizationID string) ([]models.Event, error) {
	records, err := s.dao.FindRecordsByFilter(
		collectionEvents,
		"organization = {:organization} && is_deleted = false",
		"event_date",
		0,
		0,
		dbx.Params{"organization": organizationID},
	)
	if err != nil {
		return nil, fmt.Errorf("list events of organization %s: %w", organizationID, err)
	}

	events := make([]models.Event, 0, len(records))
	now := time.Now()
	for _, record := range records {
		event, err := decodeEvent(record)
		if err != nil {
			return nil, err
		}
		event.IsClosed = event.ClosedAt(now, s.cfg.SignupCloseWindow)
		events = append(events, *event)
	}
	return events, nil
}

// GetWithActivities returns the event together with all its activities and
// the computed sign-up window state.
func (s *EventService) GetWithActivities(eventID string) (*models.Event, error) {
	event, err := findEvent(s.dao, eventID)
	if err != nil {
		return nil, err
	}
	event.IsClosed = event.ClosedAt(time.Now(), s.cfg.SignupCloseWindow)

	activities, err := loadEventActivities(s.dao, eventID)
	if err != nil {
		return nil, err
	}
	event.Activities = activities
	return event, nil
}
