package routes

import (
	"time"

	"accountd/api/handler"
	"accountd/api/middleware"
	"accountd/internal/entity"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Accounts       *handler.AccountHandler
	Emails         *handler.EmailHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	accounts *handler.AccountHandler,
	emails *handler.EmailHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Accounts:       accounts,
		Emails:         emails,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth
	requireAdmin := middleware.RequireRole(string(entity.UserRoleAdmin), string(entity.UserRoleSuperAdmin))

	e.GET("/", r.Accounts.Status)

	e.POST("/register", r.Accounts.Register, r.AuthRate.Middleware())
	e.POST("/login", r.Accounts.Login, r.LoginRate.Middleware())
	e.POST("/refresh", r.Accounts.Refresh, r.AuthRate.Middleware())
	e.POST("/logout", r.Accounts.Logout, requireAuth)
	e.POST("/logout-all", r.Accounts.LogoutAll, requireAuth)

	e.POST("/change-username", r.Accounts.ChangeUsername, requireAuth)
	e.GET("/profile", r.Accounts.GetProfile, requireAuth)
	e.PUT("/profile", r.Accounts.UpdateProfile, requireAuth)

	e.GET("/emails", r.Emails.List, requireAuth)
	e.POST("/emails", r.Emails.Add, requireAuth)
	e.DELETE("/emails/:id", r.Emails.Remove, requireAuth)
	e.PATCH("/emails/:id", r.Emails.SetPrimary, requireAuth)

	e.GET("/verify-additional-email", r.Emails.VerifyByLink, r.AuthRate.Middleware())
	e.POST("/verify-additional-email", r.Emails.ResendVerification, r.AuthRate.Middleware())

	e.GET("/admin", r.Accounts.AdminDashboard, requireAuth, requireAdmin)
}
