package models

import "time"

// MissRecord is one append-only attendance miss entry on a user.
type MissRecord struct {
	EventID string    `json:"event"`
	Date    time.Time `json:"date"`
}

// Reconciliation is the outcome of a confirmation run: three disjoint member
// sets plus the activities with their final participant rosters applied.
type Reconciliation struct {
	Confirmed  []string
	Absent     []string
	NotApplied []string
	Activities []Activity
}

// Summary is what the confirmation endpoint reports back.
type Summary struct {
	Confirmed  int `json:"confirmed"`
	Absent     int `json:"absent"`
	NotApplied int `json:"not_applied"`
}

func (r *Reconciliation) Summary() Summary {
	return Summary{
		Confirmed:  len(r.Confirmed),
		Absent:     len(r.Absent),
		NotApplied: len(r.NotApplied),
	}
}

// Reconcile computes the confirmation outcome for one event.
//
// roster maps part id to the organizer's final participant list; parts not
// present in the roster keep their stored participants. A nil roster is the
// confirm-as-is variant: every part's applicants become its participants.
//
// A member who applied to any part of any activity counts as applied for the
// whole event, even when dropped from every final roster; such members end
// up absent, never not-applied. Set membership:
//
//	confirmed  = union of final participants
//	absent     = union of applicants minus confirmed
//	notApplied = population minus union of applicants
//
// The input activities are mutated in place (participants replaced) and
// returned in Reconciliation.Activities for persistence.
func Reconcile(activities []Activity, roster map[string][]string, population []string) Reconciliation {
	applied := map[string]struct{}{}

	for ai := range activities {
		for pi := range activities[ai].Parts {
			part := &activities[ai].Parts[pi]

			if roster == nil {
				part.Participants = append([]string{}, part.Applicants...)
			} else if final, ok := roster[part.ID]; ok {
				part.Participants = append([]string{}, final...)
			}

			for _, id := range part.Applicants {
				applied[id] = struct{}{}
			}
		}
	}

	rec := Reconciliation{
		Confirmed:  []string{},
		Absent:     []string{},
		NotApplied: []string{},
		Activities: activities,
	}

	// Walk the parts again so the output keeps application order instead of
	// map iteration order.
	emitted := map[string]struct{}{}
	for ai := range activities {
		for pi := range activities[ai].Parts {
			part := &activities[ai].Parts[pi]
			for _, id := range part.Participants {
				if _, done := emitted[id]; done {
					continue
				}
				emitted[id] = struct{}{}
				rec.Confirmed = append(rec.Confirmed, id)
			}
		}
	}
	for ai := range activities {
		for pi := range activities[ai].Parts {
			part := &activities[ai].Parts[pi]
			for _, id := range part.Applicants {
				if _, done := emitted[id]; done {
					continue
				}
				emitted[id] = struct{}{}
				rec.Absent = append(rec.Absent, id)
			}
		}
	}
	for _, id := range population {
		if _, ok := applied[id]; ok {
			continue
		}
		if _, done := emitted[id]; done {
			continue
		}
		emitted[id] = struct{}{}
		rec.NotApplied = append(rec.NotApplied, id)
	}

	return rec
}
