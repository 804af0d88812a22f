package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rehearsal-system/internal/status"
)

func TestAPIError_StatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"event not found", status.ErrEventNotFound, http.StatusNotFound},
		{"activity not found", status.ErrActivityNotFound, http.StatusNotFound},
		{"part not found", status.ErrPartNotFound, http.StatusNotFound},
		{"organization not found", status.ErrOrganizationNotFound, http.StatusNotFound},
		{"user not found", status.ErrUserNotFound, http.StatusNotFound},
		{"unauthorized", status.ErrUnauthorized, http.StatusForbidden},
		{"capacity exceeded", status.ErrCapacityExceeded, http.StatusConflict},
		{"revision conflict", status.ErrConflict, http.StatusConflict},
		{"already confirmed", status.ErrAlreadyConfirmed, http.StatusConflict},
		{"confirmation in progress", status.ErrConfirmationInProgress, http.StatusConflict},
		{"event closed", status.ErrEventClosed, http.StatusConflict},
		{"unrecognized", errors.New("boom"), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var apiErr *apis.ApiError
			require.ErrorAs(t, apiError(tc.err), &apiErr)
			assert.Equal(t, tc.code, apiErr.Code)
		})
	}
}

func TestAPIError_WrappedErrorsStillMap(t *testing.T) {
	wrapped := errors.Join(errors.New("apply to part"), status.ErrCapacityExceeded)

	var apiErr *apis.ApiError
	require.ErrorAs(t, apiError(wrapped), &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Code)
}
