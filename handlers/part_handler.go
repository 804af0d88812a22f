package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	pbmodels "github.com/pocketbase/pocketbase/models"

	"rehearsal-system/models"
	"rehearsal-system/services"
)

type PartHandler struct {
	app           *pocketbase.PocketBase
	signupService *services.SignupService
	partService   *services.PartService
}

func NewPartHandler(app *pocketbase.PocketBase, signupService *services.SignupService, partService *services.PartService) *PartHandler {
	return &PartHandler{
		app:           app,
		signupService: signupService,
		partService:   partService,
	}
}

// Apply - claim a slot in a part for the authenticated member
func (h *PartHandler) Apply(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	activityID := c.PathParam("activityId")
	partID := c.PathParam("partId")

	part, err := h.signupService.ApplyToPart(c.Request().Context(), activityID, partID, authRecord.Id)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    part,
	})
}

// Cancel - withdraw the authenticated member's application
func (h *PartHandler) Cancel(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	activityID := c.PathParam("activityId")
	partID := c.PathParam("partId")

	part, err := h.signupService.CancelApplication(c.Request().Context(), activityID, partID, authRecord.Id)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    part,
	})
}

// AddPart - organizer adds a part to an activity
func (h *PartHandler) AddPart(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Name       string `json:"name"`
		Limitation int    `json:"limitation"`
		Order      int    `json:"order"`
	}
	if err := c.Bind(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Name == "" || req.Limitation < 1 {
		return apis.NewBadRequestError("Part needs a name and a positive limitation", nil)
	}

	activity, err := h.partService.AddPart(
		c.Request().Context(),
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		c.PathParam("activityId"),
		req.Name,
		req.Limitation,
		req.Order,
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    activity,
	})
}

// UpdatePart - organizer renames a part or changes its limitation
func (h *PartHandler) UpdatePart(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var patch models.PartPatch
	if err := c.Bind(&patch); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if patch.Limitation != nil && *patch.Limitation < 1 {
		return apis.NewBadRequestError("Limitation must be positive", nil)
	}

	part, err := h.partService.UpdatePart(
		c.Request().Context(),
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		c.PathParam("activityId"),
		c.PathParam("partId"),
		patch,
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    part,
	})
}

// RemovePart - organizer deletes a part
func (h *PartHandler) RemovePart(c echo.Context) error {
	authRecord, _ := c.Get(apis.ContextAuthRecordKey).(*pbmodels.Record)
	if authRecord == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	err := h.partService.RemovePart(
		c.Request().Context(),
		authRecord.Id,
		models.UserRole(authRecord.GetString("role")),
		c.PathParam("activityId"),
		c.PathParam("partId"),
	)
	if err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
