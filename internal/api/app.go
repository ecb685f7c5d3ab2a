package api

import (
	"database/sql"
	"fmt"
	"net/http"

	"portal/internal/api/handlers"
	"portal/internal/api/middleware"
	"portal/internal/engine/access"
	"portal/internal/engine/submissions"
	"portal/internal/engine/webhooks"
	"portal/internal/pkg/request"
	"portal/internal/platform/audit"
	"portal/internal/platform/auth"
	"portal/internal/platform/config"
	"portal/internal/platform/database"
	"portal/internal/platform/repositories"
)

// App is the wired HTTP surface plus the pieces the server process drives.
type App struct {
	Handler     http.Handler
	RateLimiter *middleware.RateLimiter
	Dispatcher  *webhooks.Dispatcher
}

func NewApp(cfg *config.Config, db *sql.DB) (*App, error) {
	proxies, err := request.NewProxyResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("server.trusted_proxies: %w", err)
	}

	// Repositories
	identityRepo := repositories.NewIdentityRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	contactRepo := repositories.NewContactMessageRepository(db)
	procedureRepo := repositories.NewProcedureRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	newsRepo := repositories.NewNewsRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	dashboardRepo := repositories.NewDashboardRepository(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	auditLogger := audit.NewLogger(db)
	registry := webhooks.NewRegistry(settingsRepo)
	dispatcher := webhooks.NewDispatcher(registry, webhooks.NewClient(cfg.Relay))
	submissionSvc := submissions.NewService(contactRepo, procedureRepo, applicationRepo, jobRepo, dispatcher)
	guard := access.NewGuard(
		access.NewResolver(profileRepo, cfg.Access),
		access.NewGate(cfg.Access.AdminEmails),
		sessionRepo,
	)

	rateLimiter := middleware.NewRateLimiter()

	deps := &Dependencies{
		AuthHandler:        handlers.NewAuthHandler(identityRepo, profileRepo, sessionRepo, tokenSvc, cfg.JWT),
		SubmissionHandler:  handlers.NewSubmissionHandler(submissionSvc),
		JobHandler:         handlers.NewJobHandler(jobRepo, auditLogger),
		NewsHandler:        handlers.NewNewsHandler(newsRepo, auditLogger),
		EventHandler:       handlers.NewEventHandler(eventRepo, auditLogger),
		ServiceHandler:     handlers.NewServiceHandler(serviceRepo, auditLogger),
		RelayHandler:       handlers.NewRelayHandler(dispatcher),
		InboxHandler:       handlers.NewInboxHandler(contactRepo, procedureRepo, applicationRepo, dashboardRepo, auditLogger),
		IntegrationHandler: handlers.NewIntegrationHandler(registry, dispatcher, auditLogger),
		SettingsHandler:    handlers.NewSettingsHandler(settingsRepo, auditLogger),
		UserHandler:        handlers.NewUserHandler(profileRepo, sessionRepo, auditLogger),
		AuditHandler:       handlers.NewAuditHandler(auditLogger),
		HealthHandler:      handlers.NewHealthHandler(database.NewDBWrapper(db), registry),
		MetricsHandler:     handlers.NewMetricsHandler(dispatcher),
		AuthMiddleware:     middleware.NewAuthMiddleware(tokenSvc, sessionRepo),
		GateMiddleware:     middleware.NewGateMiddleware(guard),
		RateLimiter:        rateLimiter,
		RateLimits:         cfg.RateLimit,
	}

	return &App{
		Handler:     proxies.Middleware(middleware.RequestLogger(NewRouter(deps))),
		RateLimiter: rateLimiter,
		Dispatcher:  dispatcher,
	}, nil
}
