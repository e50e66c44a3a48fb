package app

import (
	"github.com/gin-gonic/gin"

	"printer-scheduler/internal/schedule"
)

// App wires the HTTP handlers to the board and its collaborators.
type App struct {
	Board    *Board
	Rules    schedule.Rules
	Opening  schedule.ClockTime
	Auth     *Authenticator
	Calendar *CalendarImport
}

// Routes registers every endpoint on router.
func (a *App) Routes(router *gin.Engine) {
	router.GET("/healthz", a.HealthHandler)

	// OAuth2 callback (must be before auth middleware)
	router.GET("/oauth2callback", a.CalendarCallbackHandler)

	api := router.Group("/api")
	api.Use(a.Auth.Middleware())
	{
		api.GET("/status", a.StatusHandler)
		api.GET("/free", a.FreeSlotsHandler)

		reservations := api.Group("/reservations")
		{
			reservations.GET("", a.ListReservationsHandler)
			reservations.POST("", a.CreateReservationHandler)
			reservations.POST("/check", a.CheckReservationHandler)
			reservations.GET("/:id", a.GetReservationHandler)
			reservations.PUT("/:id", a.UpdateReservationHandler)
			reservations.DELETE("/:id", a.DeleteReservationHandler)
		}

		calendar := api.Group("/calendar")
		{
			calendar.GET("/auth", a.CalendarAuthHandler)
			calendar.GET("/blocks", a.CalendarBlocksHandler)
		}
	}
}
