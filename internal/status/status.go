package status

import "errors"

var (
	ErrEventNotFound        = errors.New("event: event not found")
	ErrActivityNotFound     = errors.New("activity: activity not found")
	ErrPartNotFound         = errors.New("part: part not found")
	ErrOrganizationNotFound = errors.New("organization: organization not found")
	ErrUserNotFound         = errors.New("user: user not found")

	ErrUnauthorized = errors.New("auth: caller is not allowed to manage this organization")

	ErrCapacityExceeded = errors.New("part: maximum applicants reached")

	// ErrConflict is returned when the optimistic retry loop runs out of
	// attempts while another writer keeps winning the activity revision.
	ErrConflict = errors.New("activity: concurrent update conflict")

	ErrAlreadyConfirmed       = errors.New("event: participants already confirmed")
	ErrConfirmationInProgress = errors.New("event: confirmation already in progress")
	ErrEventClosed            = errors.New("event: sign-up is closed")
)
