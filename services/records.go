package services

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase/daos"
	pbmodels "github.com/pocketbase/pocketbase/models"

	"rehearsal-system/internal/status"
	"rehearsal-system/models"
)

// Record field names shared by the services. Parts and member lists live in
// JSON columns; everything else is a plain collection field.
const (
	collectionOrganizations = "organizations"
	collectionEvents        = "events"
	collectionActivities    = "activities"
	collectionUsers         = "users"
)

// decodeJSONColumn decodes a JSON column value. A column that was never
// written is NULL and reads back as "" (or "null"); both mean the zero
// value, not a decode error.
func decodeJSONColumn(raw string, dst any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func decodeOrganization(record *pbmodels.Record) (*models.Organization, error) {
	org := &models.Organization{
		ID:      record.Id,
		Name:    record.GetString("name"),
		OwnerID: record.GetString("owner"),
	}
	if err := decodeJSONColumn(record.GetString("members"), &org.Members); err != nil {
		return nil, fmt.Errorf("decode organization %s members: %w", record.Id, err)
	}
	return org, nil
}

func decodeActivity(record *pbmodels.Record) (*models.Activity, error) {
	activity := &models.Activity{
		ID:          record.Id,
		EventID:     record.GetString("event"),
		Title:       record.GetString("title"),
		Description: record.GetString("description"),
		StartTime:   record.GetDateTime("start_time").Time(),
		EndTime:     record.GetDateTime("end_time").Time(),
		Revision:    record.GetInt("revision"),
	}
	if err := decodeJSONColumn(record.GetString("parts"), &activity.Parts); err != nil {
		return nil, fmt.Errorf("decode activity %s parts: %w", record.Id, err)
	}
	if activity.Parts == nil {
		activity.Parts = []models.Part{}
	}
	return activity, nil
}

func findEvent(dao *daos.Dao, eventID string) (*models.Event, error) {
	record, err := dao.FindRecordById(collectionEvents, eventID)
	if err != nil {
		return nil, status.ErrEventNotFound
	}
	event, err := decodeEvent(record)
	if err != nil {
		return nil, err
	}
	if event.IsDeleted {
		return nil, status.ErrEventNotFound
	}
	return event, nil
}

func decodeEvent(record *pbmodels.Record) (*models.Event, error) {
	event := &models.Event{
		ID:                      record.Id,
		OrganizationID:          record.GetString("organization"),
		CreatedBy:               record.GetString("created_by"),
		Description:             record.GetString("description"),
		Location:                record.GetString("location"),
		EventDate:               record.GetDateTime("event_date").Time(),
		Status:                  models.EventStatus(record.GetString("status")),
		IsClosed:                record.GetBool("is_closed"),
		IsParticipantsConfirmed: record.GetBool("is_participants_confirmed"),
		IsDeleted:               record.GetBool("is_deleted"),
	}
	if err := decodeJSONColumn(record.GetString("confirmed_participants"), &event.ConfirmedParticipants); err != nil {
		return nil, fmt.Errorf("decode event %s confirmed participants: %w", record.Id, err)
	}
	if err := decodeJSONColumn(record.GetString("absent_applicants"), &event.AbsentApplicants); err != nil {
		return nil, fmt.Errorf("decode event %s absent applicants: %w", record.Id, err)
	}
	return event, nil
}
