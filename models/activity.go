package models

import (
	"time"

	"github.com/google/uuid"

	"rehearsal-system/internal/status"
)

// Part is a capacity-limited slot group embedded in an activity document.
// Applicants keep their order of application; participants are written only
// by the confirmation run.
type Part struct {
	ID           string   `json:"id"`
	Order        int      `json:"order"`
	Name         string   `json:"name"`
	Limitation   int      `json:"limitation"`
	Applicants   []string `json:"applicants"`
	Participants []string `json:"participants"`
}

// Activity is one sub-session of an event. Parts live inside the activity
// document so that every part mutation shares a single revision.
type Activity struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Parts       []Part    `json:"parts"`
	Revision    int       `json:"revision"`
}

// PartPatch carries a partial part update. Nil fields are left untouched.
type PartPatch struct {
	Name       *string `json:"name"`
	Limitation *int    `json:"limitation"`
}

func (a *Activity) FindPart(partID string) *Part {
	for i := range a.Parts {
		if a.Parts[i].ID == partID {
			return &a.Parts[i]
		}
	}
	return nil
}

// Apply claims a slot in the given part for userID. A member holds at most
// one slot per activity, so a successful apply removes the member from every
// other part first. When the target part is full the activity is left
// completely unchanged, including any earlier application the member holds.
func (a *Activity) Apply(partID, userID string) (*Part, error) {
	part := a.FindPart(partID)
	if part == nil {
		return nil, status.ErrPartNotFound
	}

	if contains(part.Applicants, userID) {
		return part, nil
	}

	if len(part.Applicants) >= part.Limitation {
		return nil, status.ErrCapacityExceeded
	}

	for i := range a.Parts {
		if a.Parts[i].ID == partID {
			continue
		}
		a.Parts[i].Applicants = remove(a.Parts[i].Applicants, userID)
	}

	part.Applicants = append(part.Applicants, userID)
	return part, nil
}

// Cancel withdraws the member's application from the given part. Cancelling
// an application that does not exist is a no-op, not an error.
func (a *Activity) Cancel(partID, userID string) (*Part, error) {
	part := a.FindPart(partID)
	if part == nil {
		return nil, status.ErrPartNotFound
	}

	part.Applicants = remove(part.Applicants, userID)
	return part, nil
}

// AddPart appends a new empty part.
func (a *Activity) AddPart(name string, limitation, order int) *Part {
	part := Part{
		ID:           uuid.NewString(),
		Order:        order,
		Name:         name,
		Limitation:   limitation,
		Applicants:   []string{},
		Participants: []string{},
	}
	a.Parts = append(a.Parts, part)
	return &a.Parts[len(a.Parts)-1]
}

// UpdatePart applies a partial update. Lowering the limitation below the
// current applicant count is allowed and does not evict anyone; the part
// stays over capacity until applicants cancel.
func (a *Activity) UpdatePart(partID string, patch PartPatch) (*Part, error) {
	part := a.FindPart(partID)
	if part == nil {
		return nil, status.ErrPartNotFound
	}

	if patch.Name != nil {
		part.Name = *patch.Name
	}
	if patch.Limitation != nil {
		part.Limitation = *patch.Limitation
	}
	return part, nil
}

// RemovePart deletes the part. Its applicants are not migrated anywhere.
func (a *Activity) RemovePart(partID string) error {
	for i := range a.Parts {
		if a.Parts[i].ID == partID {
			a.Parts = append(a.Parts[:i], a.Parts[i+1:]...)
			return nil
		}
	}
	return status.ErrPartNotFound
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
