package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"

	"rehearsal-system/internal/status"
)

// apiError maps service errors onto API responses. Not-found and
// authorization failures are plain 4xx; capacity and confirmation rejections
// are conflicts the client can act on; everything else is a 400 with the
// cause attached.
func apiError(err error) error {
	switch {
	case errors.Is(err, status.ErrEventNotFound),
		errors.Is(err, status.ErrActivityNotFound),
		errors.Is(err, status.ErrPartNotFound),
		errors.Is(err, status.ErrOrganizationNotFound),
		errors.Is(err, status.ErrUserNotFound):
		return apis.NewNotFoundError(err.Error(), nil)

	case errors.Is(err, status.ErrUnauthorized):
		return apis.NewForbiddenError(err.Error(), nil)

	case errors.Is(err, status.ErrCapacityExceeded),
		errors.Is(err, status.ErrConflict),
		errors.Is(err, status.ErrAlreadyConfirmed),
		errors.Is(err, status.ErrConfirmationInProgress),
		errors.Is(err, status.ErrEventClosed):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)

	default:
		return apis.NewBadRequestError("Request failed", err)
	}
}
