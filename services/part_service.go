package services

import (
	"context"

	"github.com/pocketbase/pocketbase/daos"

	"rehearsal-system/models"
)

// PartService is the organizer-side part CRUD. Every mutation walks the
// activity -> event -> organization chain and runs the authorization guard
// before touching the slot store.
type PartService struct {
	store *SlotStore
	dao   *daos.Dao
	authz *AuthzService
}

func NewPartService(store *SlotStore, dao *daos.Dao, authz *AuthzService) *PartService {
	return &PartService{store: store, dao: dao, authz: authz}
}

// AddPart appends a new part with empty applicant and participant sets.
func (s *PartService) AddPart(ctx context.Context, callerID string, callerRole models.UserRole, activityID, name string, limitation, order int) (*models.Activity, error) {
	if err := s.requireManage(ctx, callerID, callerRole, activityID); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, activityID, func(a *models.Activity) error {
		a.AddPart(name, limitation, order)
		return nil
	})
}

// UpdatePart applies a partial update to one part. Lowering the limitation
// below the current applicant count is allowed; nobody is evicted.
func (s *PartService) UpdatePart(ctx context.Context, callerID string, callerRole models.UserRole, activityID, partID string, patch models.PartPatch) (*models.Part, error) {
	if err := s.requireManage(ctx, callerID, callerRole, activityID); err != nil {
		return nil, err
	}

	activity, err := s.store.Update(ctx, activityID, func(a *models.Activity) error {
		_, updateErr := a.UpdatePart(partID, patch)
		return updateErr
	})
	if err != nil {
		return nil, err
	}
	return activity.FindPart(partID), nil
}

// RemovePart deletes the part from its activity. Applicants of a removed
// part are not migrated anywhere.
func (s *PartService) RemovePart(ctx context.Context, callerID string, callerRole models.UserRole, activityID, partID string) error {
	if err := s.requireManage(ctx, callerID, callerRole, activityID); err != nil {
		return err
	}

	_, err := s.store.Update(ctx, activityID, func(a *models.Activity) error {
		return a.RemovePart(partID)
	})
	return err
}

func (s *PartService) requireManage(ctx context.Context, callerID string, callerRole models.UserRole, activityID string) error {
	activity, err := s.store.Get(ctx, activityID)
	if err != nil {
		return err
	}
	event, err := findEvent(s.dao, activity.EventID)
	if err != nil {
		return err
	}
	return s.authz.RequireManage(callerID, callerRole, event.OrganizationID)
}
