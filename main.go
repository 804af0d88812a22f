package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rehearsal-system/config"
	"rehearsal-system/handlers"
	_ "rehearsal-system/migrations"
	"rehearsal-system/security"
	"rehearsal-system/services"
	"rehearsal-system/utils"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Register routes. Services need the DAO, which exists only once the
	// app has bootstrapped, so all wiring happens here.
	app.OnBeforeServe().Add(func(e *core.ServeEvent) error {
		dao := app.Dao()

		// Initialize services
		authzService := services.NewAuthzService(dao)
		slotStore := services.NewSlotStore(dao, cfg.SaveRetries)
		signupService := services.NewSignupService(slotStore, dao, cfg)
		partService := services.NewPartService(slotStore, dao, authzService)
		activityService := services.NewActivityService(dao, authzService)
		eventService := services.NewEventService(dao, authzService, cfg)
		confirmationService := services.NewConfirmationService(dao, authzService, redisClient, cfg)

		// Initialize handlers
		partHandler := handlers.NewPartHandler(app, signupService, partService)
		activityHandler := handlers.NewActivityHandler(app, activityService)
		eventHandler := handlers.NewEventHandler(app, eventService, confirmationService)

		rateLimiter := security.NewRateLimiter(redisClient, cfg.ApplyRateLimit)
		requireAuth := apis.RequireRecordAuth("users")

		// Sign-up endpoints
		e.Router.POST("/api/activities/:activityId/parts/:partId/apply", partHandler.Apply, requireAuth, rateLimiter.SignupRateLimit())
		e.Router.POST("/api/activities/:activityId/parts/:partId/cancel", partHandler.Cancel, requireAuth, rateLimiter.SignupRateLimit())

		// Part endpoints (organizer)
		e.Router.POST("/api/activities/:activityId/parts", partHandler.AddPart, requireAuth)
		e.Router.PATCH("/api/activities/:activityId/parts/:partId", partHandler.UpdatePart, requireAuth)
		e.Router.DELETE("/api/activities/:activityId/parts/:partId", partHandler.RemovePart, requireAuth)

		// Activity endpoints (organizer)
		e.Router.POST("/api/activities", activityHandler.Create, requireAuth)
		e.Router.PATCH("/api/activities/:id", activityHandler.Update, requireAuth)
		e.Router.DELETE("/api/activities/:id", activityHandler.Delete, requireAuth)

		// Event endpoints
		e.Router.POST("/api/events", eventHandler.Create, requireAuth)
		e.Router.GET("/api/events", eventHandler.List, requireAuth)
		e.Router.GET("/api/events/:id", eventHandler.Get, requireAuth)
		e.Router.PATCH("/api/events/:id", eventHandler.Update, requireAuth)
		e.Router.DELETE("/api/events/:id", eventHandler.Delete, requireAuth)

		// Confirmation endpoints (organizer)
		e.Router.POST("/api/events/:id/checkout", eventHandler.Checkout, requireAuth)
		e.Router.POST("/api/events/:id/confirm-participants", eventHandler.ConfirmParticipants, requireAuth)

		// Monitoring
		if cfg.EnableMetrics {
			e.Router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
		}

		// Health check
		e.Router.GET("/health", func(c echo.Context) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return nil
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
