package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	pbmodels "github.com/pocketbase/pocketbase/models"

	"rehearsal-system/models"
	"rehearsal-system/services"
)

type ActivityHandler struct {
	app             *pocketbase.PocketBase
	activityService *services.ActivityService
}

func NewActivityHandler(app *pocketbase.PocketBase, activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		app:             app,
		activityService: activityService,
	}
}

// Create - organizer adds an activity to an event
func (h *ActivityHandler) Create(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		EventID     string    `json:"event_id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		StartTime   time.Time `json:"start_time"`
		EndTime     time.Time `json:"end_time"`
	}
	if err := c.Bind(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Title == "" {
		return apis.NewBadRequestError("Activity needs a title", nil)
	}

	activity, err := h.activityService.Create(
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		services.CreateActivityInput{
			EventID:     req.EventID,
			Title:       req.Title,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		},
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    activity,
	})
}

// Update - organizer edits activity metadata
func (h *ActivityHandler) Update(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
	}
	if err := c.Bind(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	activity, err := h.activityService.Update(
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		c.PathParam("id"),
		services.UpdateActivityInput{
			Title:       req.Title,
			Description: req.Description,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		},
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    activity,
	})
}

// Delete - organizer removes an activity and its event reference
func (h *ActivityHandler) Delete(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	err := h.activityService.Delete(
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		c.PathParam("id"),
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
