package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "portal/internal/api/context"
	"portal/internal/api/handlers"
	"portal/internal/api/middleware"
	"portal/internal/engine/access"
	"portal/internal/pkg/errors"
	"portal/internal/platform/config"
	"portal/internal/platform/models"
)

type Dependencies struct {
	AuthHandler        *handlers.AuthHandler
	SubmissionHandler  *handlers.SubmissionHandler
	JobHandler         *handlers.JobHandler
	NewsHandler        *handlers.NewsHandler
	EventHandler       *handlers.EventHandler
	ServiceHandler     *handlers.ServiceHandler
	RelayHandler       *handlers.RelayHandler
	InboxHandler       *handlers.InboxHandler
	IntegrationHandler *handlers.IntegrationHandler
	SettingsHandler    *handlers.SettingsHandler
	UserHandler        *handlers.UserHandler
	AuditHandler       *handlers.AuditHandler
	HealthHandler      *handlers.HealthHandler
	MetricsHandler     *handlers.MetricsHandler
	AuthMiddleware     *middleware.AuthMiddleware
	GateMiddleware     *middleware.GateMiddleware
	RateLimiter        *middleware.RateLimiter
	RateLimits         config.RateLimitConfig
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Route not found", nil)
	})

	authMid := deps.AuthMiddleware.Handle
	content := deps.GateMiddleware.Require(access.ContentRoles...)
	superAdmin := deps.GateMiddleware.Require(models.RoleSuperAdmin)
	public := deps.RateLimiter.Limit("public", deps.RateLimits.PublicPerMinute)
	relay := deps.RateLimiter.Limit("relay", deps.RateLimits.RelayPerMinute)

	// Operations
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Authentication
	router.POST("/api/v1/auth/signup", chain(deps.AuthHandler.Signup, public))
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, public))
	router.POST("/api/v1/auth/logout", wrap(deps.AuthHandler.Logout))
	router.GET("/api/v1/auth/me", chain(deps.AuthHandler.Me, authMid, content))

	// Public forms
	router.POST("/api/v1/contact", chain(deps.SubmissionHandler.Contact, public))
	router.POST("/api/v1/procedures", chain(deps.SubmissionHandler.Procedure, public))
	router.POST("/api/v1/applications", chain(deps.SubmissionHandler.Application, public))
	router.GET("/api/v1/jobs", wrap(deps.JobHandler.ListOpen))
	router.GET("/api/v1/news", wrap(deps.NewsHandler.List))
	router.GET("/api/v1/events", wrap(deps.EventHandler.ListUpcoming))
	router.GET("/api/v1/services", wrap(deps.ServiceHandler.ListActive))
	router.POST("/api/v1/relay/discord", chain(deps.RelayHandler.Discord, relay))

	// Content administration
	router.GET("/api/v1/admin/dashboard", chain(deps.InboxHandler.Dashboard, authMid, content))
	router.GET("/api/v1/admin/messages", chain(deps.InboxHandler.Messages, authMid, content))
	router.DELETE("/api/v1/admin/messages/:message_id", chain(deps.InboxHandler.DeleteMessage, authMid, content))
	router.GET("/api/v1/admin/procedures", chain(deps.InboxHandler.Procedures, authMid, content))
	router.PATCH("/api/v1/admin/procedures/:submission_id/status", chain(deps.InboxHandler.SetProcedureStatus, authMid, content))
	router.GET("/api/v1/admin/applications", chain(deps.InboxHandler.Applications, authMid, content))
	router.GET("/api/v1/admin/jobs", chain(deps.JobHandler.ListAll, authMid, content))
	router.POST("/api/v1/admin/jobs", chain(deps.JobHandler.Create, authMid, content))
	router.PATCH("/api/v1/admin/jobs/:job_id", chain(deps.JobHandler.Update, authMid, content))
	router.DELETE("/api/v1/admin/jobs/:job_id", chain(deps.JobHandler.Delete, authMid, content))
	router.GET("/api/v1/admin/news", chain(deps.NewsHandler.List, authMid, content))
	router.POST("/api/v1/admin/news", chain(deps.NewsHandler.Create, authMid, content))
	router.PATCH("/api/v1/admin/news/:news_id", chain(deps.NewsHandler.Update, authMid, content))
	router.DELETE("/api/v1/admin/news/:news_id", chain(deps.NewsHandler.Delete, authMid, content))
	router.GET("/api/v1/admin/events", chain(deps.EventHandler.ListAll, authMid, content))
	router.POST("/api/v1/admin/events", chain(deps.EventHandler.Create, authMid, content))
	router.PATCH("/api/v1/admin/events/:event_id", chain(deps.EventHandler.Update, authMid, content))
	router.DELETE("/api/v1/admin/events/:event_id", chain(deps.EventHandler.Delete, authMid, content))
	router.GET("/api/v1/admin/services", chain(deps.ServiceHandler.ListAll, authMid, content))
	router.POST("/api/v1/admin/services", chain(deps.ServiceHandler.Create, authMid, content))
	router.PATCH("/api/v1/admin/services/:service_id", chain(deps.ServiceHandler.Update, authMid, content))
	router.DELETE("/api/v1/admin/services/:service_id", chain(deps.ServiceHandler.Delete, authMid, content))

	// Super admin only
	router.GET("/api/v1/admin/integrations", chain(deps.IntegrationHandler.List, authMid, superAdmin))
	router.PUT("/api/v1/admin/integrations/:channel", chain(deps.IntegrationHandler.Update, authMid, superAdmin))
	router.POST("/api/v1/admin/integrations/:channel/test", chain(deps.IntegrationHandler.Test, authMid, superAdmin))
	router.GET("/api/v1/admin/settings", chain(deps.SettingsHandler.List, authMid, superAdmin))
	router.PUT("/api/v1/admin/settings", chain(deps.SettingsHandler.Update, authMid, superAdmin))
	router.GET("/api/v1/admin/users", chain(deps.UserHandler.List, authMid, superAdmin))
	router.PATCH("/api/v1/admin/users/:user_id/role", chain(deps.UserHandler.UpdateRole, authMid, superAdmin))
	router.POST("/api/v1/admin/users/:user_id/approve", chain(deps.UserHandler.Approve, authMid, superAdmin))
	router.POST("/api/v1/admin/users/:user_id/toggle", chain(deps.UserHandler.Toggle, authMid, superAdmin))
	router.DELETE("/api/v1/admin/users/:user_id", chain(deps.UserHandler.Delete, authMid, superAdmin))
	router.GET("/api/v1/admin/audit", chain(deps.AuditHandler.List, authMid, superAdmin))

	return router
}

// chain applies middlewares so that the first one listed runs first.
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// wrap converts an http.HandlerFunc to an httprouter.Handle, exposing the
// route parameters through the request context.
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
