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

type EventHandler struct {
	app                 *pocketbase.PocketBase
	eventService        *services.EventService
	confirmationService *services.ConfirmationService
}

func NewEventHandler(app *pocketbase.PocketBase, eventService *services.EventService, confirmationService *services.ConfirmationService) *EventHandler {
	return &EventHandler{
		app:                 app,
		eventService:        eventService,
		confirmationService: confirmationService,
	}
}

// Create - organizer creates an event
func (h *EventHandler) Create(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		OrganizationID string    `json:"organization_id"`
		Description    string    `json:"description"`
		Location       string    `json:"location"`
		EventDate      time.Time `json:"event_date"`
	}
	if err := c.Bind(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, err := h.eventService.Create(
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		services.CreateEventInput{
			OrganizationID: req.OrganizationID,
			Description:    req.Description,
			Location:       req.Location,
			EventDate:      req.EventDate,
		},
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    event,
	})
}

// List - events of an organization, soft-deleted ones excluded
func (h *EventHandler) List(c echo.Context) error {
	organizationID := c.QueryParam("organization")
	if organizationID == "" {
		return apis.NewBadRequestError("organization query parameter is required", nil)
	}

	events, err := h.eventService.ListByOrganization(organizationID)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    events,
	})
}

// Get - one event with its activities and the computed sign-up state
func (h *EventHandler) Get(c echo.Context) error {
	event, err := h.eventService.GetWithActivities(c.PathParam("id"))
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    event,
	})
}

// Update - organizer edits event metadata
func (h *EventHandler) Update(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Description *string    `json:"description"`
		Location    *string    `json:"location"`
		EventDate   *time.Time `json:"event_date"`
	}
	if err := c.Bind(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, err := h.eventService.Update(
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		c.PathParam("id"),
		services.UpdateEventInput{
			Description: req.Description,
			Location:    req.Location,
			EventDate:   req.EventDate,
		},
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    event,
	})
}

// Delete - soft delete
func (h *EventHandler) Delete(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	err := h.eventService.SoftDelete(
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		c.PathParam("id"),
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// Checkout - confirm participants with the organizer's final roster per part
func (h *EventHandler) Checkout(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Parts map[string][]string `json:"parts"`
	}
	if err := c.Bind(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Parts == nil {
		req.Parts = map[string][]string{}
	}

	summary, err := h.confirmationService.Confirm(
		c.Request().Context(),
		c.PathParam("id"),
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		req.Parts,
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    summary,
	})
}

// ConfirmParticipants - confirm-as-is: every applicant becomes a participant
func (h *EventHandler) ConfirmParticipants(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	summary, err := h.confirmationService.Confirm(
		c.Request().Context(),
		c.PathParam("id"),
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		nil,
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    summary,
	})
}
