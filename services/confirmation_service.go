package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/daos"
	pbmodels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/redis/go-redis/v9"

	"rehearsal-system/config"
	"rehearsal-system/internal/status"
	"rehearsal-system/models"
	"rehearsal-system/monitoring"
	"rehearsal-system/utils"
)

// ConfirmationService finalizes attendance for one event: it fixes each
// part's participant roster, splits the member population into confirmed,
// absent applicants and non-appliers, and appends the matching miss records
// to every penalized user. The whole run commits or rolls back as one
// transaction, so a half-applied reconciliation is never observable.
type ConfirmationService struct {
	dao     *daos.Dao
	authz   *AuthzService
	redis   *redis.Client
	breaker *utils.CircuitBreaker
	cfg     *config.Config
}

func NewConfirmationService(dao *daos.Dao, authz *AuthzService, redisClient *redis.Client, cfg *config.Config) *ConfirmationService {
	return &ConfirmationService{
		dao:     dao,
		authz:   authz,
		redis:   redisClient,
		breaker: utils.NewCircuitBreaker("confirmation-lock"),
		cfg:     cfg,
	}
}

// Confirm runs the reconciliation for eventID. roster maps part id to the
// organizer's final participant list; a nil roster confirms every part
// as-applied. Re-confirming an already confirmed event is rejected.
func (s *ConfirmationService) Confirm(ctx context.Context, eventID, callerID string, callerRole models.UserRole, roster map[string][]string) (models.Summary, error) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmDeadline)
	defer cancel()

	summary, err := s.confirm(ctx, eventID, callerID, callerRole, roster)
	if err != nil {
		monitoring.TrackConfirmation("error", time.Since(started))
		return models.Summary{}, err
	}

	monitoring.TrackConfirmation("ok", time.Since(started))
	return summary, nil
}

func (s *ConfirmationService) confirm(ctx context.Context, eventID, callerID string, callerRole models.UserRole, roster map[string][]string) (models.Summary, error) {
	event, err := findEvent(s.dao, eventID)
	if err != nil {
		return models.Summary{}, err
	}

	if err := s.authz.RequireManage(callerID, callerRole, event.OrganizationID); err != nil {
		return models.Summary{}, err
	}

	if event.IsParticipantsConfirmed {
		return models.Summary{}, status.ErrAlreadyConfirmed
	}

	// Only one confirmation may be in flight per event. The redis lock goes
	// through the breaker so a redis outage degrades to fast failures
	// instead of piling up blocked requests.
	unlock, err := s.acquireLock(ctx, eventID)
	if err != nil {
		return models.Summary{}, err
	}
	defer unlock()

	population, err := s.loadPopulation(event.OrganizationID)
	if err != nil {
		return models.Summary{}, err
	}

	if err := ctx.Err(); err != nil {
		return models.Summary{}, err
	}

	var summary models.Summary
	txErr := s.dao.RunInTransaction(func(txDao *daos.Dao) error {
		eventRecord, err := txDao.FindRecordById(collectionEvents, eventID)
		if err != nil {
			return status.ErrEventNotFound
		}
		// Re-check under the lock: another run may have confirmed the event
		// between the first read and lock acquisition.
		if err := ensureUnconfirmed(eventRecord); err != nil {
			return err
		}

		activities, err := loadEventActivities(txDao, eventID)
		if err != nil {
			return err
		}

		rec := models.Reconcile(activities, roster, population)

		for i := range rec.Activities {
			if err := saveActivityParts(txDao, &rec.Activities[i]); err != nil {
				return err
			}
		}

		confirmedAt := time.Now()
		for _, userID := range rec.NotApplied {
			if err := appendMiss(txDao, userID, "not_applied", eventID, confirmedAt); err != nil {
				return err
			}
		}
		for _, userID := range rec.Absent {
			if err := appendMiss(txDao, userID, "not_participated", eventID, confirmedAt); err != nil {
				return err
			}
		}

		eventRecord.Set("confirmed_participants", rec.Confirmed)
		eventRecord.Set("absent_applicants", rec.Absent)
		eventRecord.Set("is_participants_confirmed", true)
		if err := txDao.SaveRecord(eventRecord); err != nil {
			return fmt.Errorf("save event %s: %w", eventID, err)
		}

		summary = rec.Summary()
		return nil
	})
	if txErr != nil {
		return models.Summary{}, txErr
	}

	log.Printf("event %s confirmed: %d confirmed, %d absent, %d not applied",
		eventID, summary.Confirmed, summary.Absent, summary.NotApplied)
	return summary, nil
}

func (s *ConfirmationService) acquireLock(ctx context.Context, eventID string) (func(), error) {
	key := confirmLockKey(eventID)

	var acquired bool
	err := s.breaker.Do(func() error {
		ok, setErr := s.redis.SetNX(ctx, key, "1", s.cfg.ConfirmLockTTL).Result()
		if setErr != nil {
			return setErr
		}
		acquired = ok
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirmation lock for event %s: %w", eventID, err)
	}
	if !acquired {
		return nil, status.ErrConfirmationInProgress
	}

	return func() {
		// Release with a fresh context: the request context may already be
		// done and the lock must not be left to its TTL.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redis.Del(releaseCtx, key).Err(); err != nil {
			log.Printf("release confirmation lock for event %s: %v", eventID, err)
		}
	}, nil
}

func (s *ConfirmationService) loadPopulation(organizationID string) ([]string, error) {
	if s.cfg.Population == config.PopulationAll {
		records, err := s.dao.FindRecordsByFilter(
			collectionUsers,
			"status = {:status}",
			"created",
			0,
			0,
			dbx.Params{"status": "ACTIVE"},
		)
		if err != nil {
			return nil, fmt.Errorf("load user population: %w", err)
		}
		ids := make([]string, len(records))
		for i, record := range records {
			ids[i] = record.Id
		}
		return ids, nil
	}

	record, err := s.dao.FindRecordById(collectionOrganizations, organizationID)
	if err != nil {
		return nil, status.ErrOrganizationNotFound
	}
	org, err := decodeOrganization(record)
	if err != nil {
		return nil, err
	}
	return org.MemberIDs(), nil
}

func loadEventActivities(dao *daos.Dao, eventID string) ([]models.Activity, error) {
	records, err := dao.FindRecordsByFilter(
		collectionActivities,
		"event = {:event}",
		"created",
		0,
		0,
		dbx.Params{"event": eventID},
	)
	if err != nil {
		return nil, fmt.Errorf("load activities of event %s: %w", eventID, err)
	}

	activities := make([]models.Activity, 0, len(records))
	for _, record := range records {
		activity, err := decodeActivity(record)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *activity)
	}
	return activities, nil
}

// saveActivityParts writes the reconciled parts under the same revision
// check the slot store uses. An apply that slipped in after the snapshot
// fails the check and aborts the run instead of being silently overwritten.
func saveActivityParts(dao *daos.Dao, activity *models.Activity) error {
	raw, err := json.Marshal(activity.Parts)
	if err != nil {
		return fmt.Errorf("encode activity %s parts: %w", activity.ID, err)
	}

	result, err := dao.DB().
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
		return fmt.Errorf("save activity %s: %w", activity.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save activity %s: %w", activity.ID, err)
	}
	if affected != 1 {
		return status.ErrConflict
	}
	return nil
}

// appendMiss adds one {event, date} record to the user's miss log and bumps
// the matching counter, both on the same record save.
func appendMiss(dao *daos.Dao, userID, field, eventID string, date time.Time) error {
	record, err := dao.FindRecordById(collectionUsers, userID)
	if err != nil {
		return status.ErrUserNotFound
	}

	if err := applyMiss(record, field, eventID, date); err != nil {
		return err
	}

	if err := dao.SaveRecord(record); err != nil {
		return fmt.Errorf("save user %s: %w", userID, err)
	}
	return nil
}

// applyMiss mutates the user record in memory. A never-penalized user has a
// NULL miss-log column, which decodes to the empty log.
func applyMiss(record *pbmodels.Record, field, eventID string, date time.Time) error {
	var misses []models.MissRecord
	if err := decodeJSONColumn(record.GetString(field), &misses); err != nil {
		return fmt.Errorf("decode user %s %s: %w", record.Id, field, err)
	}
	misses = append(misses, models.MissRecord{EventID: eventID, Date: date})

	record.Set(field, misses)
	record.Set(field+"_count", record.GetInt(field+"_count")+1)
	return nil
}

func ensureUnconfirmed(record *pbmodels.Record) error {
	if record.GetBool("is_participants_confirmed") {
		return status.ErrAlreadyConfirmed
	}
	return nil
}

func confirmLockKey(eventID string) string {
	return fmt.Sprintf("confirm:lock:%s", eventID)
}
