package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sampahku/internal/middleware"
	"sampahku/internal/models"
	"sampahku/internal/services"
)

// Handlers groups every API handler
type Handlers struct {
	Auth          *AuthHandler
	Citizens      *CitizenHandler
	Payments      *PaymentHandler
	Disputes      *DisputeHandler
	Accounts      *AccountHandler
	Notifications *NotificationHandler
	Recap         *RecapHandler
}

// Register mounts the JSON API under /api
func Register(e *echo.Echo, sessions *services.SessionManager, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
	})

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", h.Auth.HandleLogin)
	api.POST("/auth/citizen-login", h.Auth.HandleCitizenLogin)
	api.POST("/auth/logout", h.Auth.HandleLogout)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(sessions))
	protected.GET("/auth/me", h.Auth.Me)

	// Citizen dashboard
	warga := protected.Group("/me", middleware.RequireRole(models.RoleCitizen))
	warga.GET("", h.Citizens.MyProfile)
	warga.GET("/payments", h.Payments.MyPayments)
	warga.GET("/status", h.Payments.MyStatus)
	warga.GET("/disputes", h.Disputes.MyDisputes)
	warga.POST("/disputes", h.Disputes.SubmitDispute)
	warga.GET("/notifications", h.Notifications.MyNotifications)
	warga.POST("/notifications/:id/read", h.Notifications.MarkRead)

	// RT and admin dashboards
	staff := protected.Group("", middleware.RequireRole(models.RoleRT, models.RoleAdmin))
	staff.GET("/citizens", h.Citizens.ListCitizens)
	staff.POST("/citizens", h.Citizens.StoreCitizen)
	staff.GET("/citizens/:id", h.Citizens.GetCitizen)
	staff.PUT("/citizens/:id", h.Citizens.UpdateCitizen)
	staff.DELETE("/citizens/:id", h.Citizens.DeleteCitizen)
	staff.GET("/citizens/:id/status", h.Payments.CitizenStatus)

	staff.GET("/payments", h.Payments.ListPayments)
	staff.POST("/payments", h.Payments.RecordPayment)
	staff.GET("/payments/:id", h.Payments.GetPayment)
	staff.PATCH("/payments/:id", h.Payments.UpdatePayment)
	staff.DELETE("/payments/:id", h.Payments.DeletePayment)
	staff.POST("/payments/:id/proof", h.Payments.UploadProof)
	staff.GET("/status", h.Payments.StatusBoard)

	staff.GET("/disputes", h.Disputes.ListDisputes)
	staff.PATCH("/disputes/:id/status", h.Disputes.TransitionDispute)
	staff.GET("/recap", h.Recap.Recap)

	// Admin only
	admin := protected.Group("", middleware.RequireRole(models.RoleAdmin))
	admin.DELETE("/disputes/:id", h.Disputes.DeleteDispute)
	admin.GET("/accounts", h.Accounts.ListAccounts)
	admin.POST("/accounts", h.Accounts.StoreAccount)
	admin.GET("/accounts/:id", h.Accounts.GetAccount)
	admin.PATCH("/accounts/:id", h.Accounts.UpdateAccount)
	admin.POST("/accounts/:id/deactivate", h.Accounts.DeactivateAccount)
	admin.POST("/accounts/:id/activate", h.Accounts.ActivateAccount)
	admin.DELETE("/accounts/:id", h.Accounts.DeleteAccount)
	admin.PUT("/admin/credentials", h.Accounts.UpdateAdminCredentials)
}
