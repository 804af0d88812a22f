package services

import (
	"context"
	"errors"
	"time"

	"github.com/pocketbase/pocketbase/daos"

	"rehearsal-system/config"
	"rehearsal-system/internal/status"
	"rehearsal-system/models"
	"rehearsal-system/monitoring"
)

// SignupService is the member-facing apply/cancel protocol. Both operations
// are self-service: the caller can only move their own membership, so the
// only checks are existence and the sign-up window.
type SignupService struct {
	store *SlotStore
	dao   *daos.Dao
	cfg   *config.Config
}

func NewSignupService(store *SlotStore, dao *daos.Dao, cfg *config.Config) *SignupService {
	return &SignupService{store: store, dao: dao, cfg: cfg}
}

// ApplyToPart claims a slot in the part for userID. Applying to another part
// of the same activity moves the application; a full part rejects the whole
// operation and leaves every part untouched.
func (s *SignupService) ApplyToPart(ctx context.Context, activityID, partID, userID string) (*models.Part, error) {
	if err := s.checkSignupOpen(activityID); err != nil {
		monitoring.TrackApply("apply", "closed")
		return nil, err
	}

	activity, err := s.store.Update(ctx, activityID, func(a *models.Activity) error {
		_, applyErr := a.Apply(partID, userID)
		return applyErr
	})
	if err != nil {
		switch {
		case errors.Is(err, status.ErrCapacityExceeded):
			monitoring.TrackApply("apply", "capacity_exceeded")
			monitoring.TrackCapacityRejection(activityID)
		case errors.Is(err, status.ErrConflict):
			monitoring.TrackApply("apply", "conflict")
		default:
			monitoring.TrackApply("apply", "error")
		}
		return nil, err
	}

	part := activity.FindPart(partID)
	monitoring.TrackApply("apply", "ok")
	monitoring.TrackPartApplicants(activityID, partID, len(part.Applicants))
	return part, nil
}

// CancelApplication withdraws the member's application from the part.
// Cancelling twice is the same as cancelling once; the second call is not an
// error. Cancels are accepted even after sign-up closes so a freed slot is
// visible to the organizer.
func (s *SignupService) CancelApplication(ctx context.Context, activityID, partID, userID string) (*models.Part, error) {
	activity, err := s.store.Update(ctx, activityID, func(a *models.Activity) error {
		_, cancelErr := a.Cancel(partID, userID)
		return cancelErr
	})
	if err != nil {
		monitoring.TrackApply("cancel", "error")
		return nil, err
	}

	part := activity.FindPart(partID)
	monitoring.TrackApply("cancel", "ok")
	monitoring.TrackPartApplicants(activityID, partID, len(part.Applicants))
	return part, nil
}

func (s *SignupService) checkSignupOpen(activityID string) error {
	record, err := s.dao.FindRecordById(collectionActivities, activityID)
	if err != nil {
		return status.ErrActivityNotFound
	}

	event, err := findEvent(s.dao, record.GetString("event"))
	if err != nil {
		return err
	}
	if event.IsParticipantsConfirmed {
		return status.ErrEventClosed
	}
	if event.ClosedAt(time.Now(), s.cfg.SignupCloseWindow) {
		return status.ErrEventClosed
	}
	return nil
}
