// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/assignment"
	"leadflow_backend/internal/leads/dashboard"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/intake"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/review"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is what the leads module reads from configuration.
type Config interface {
	config.AssignmentConfig
	config.PipelineConfig
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// Deps are the optional collaborators of the module.
type Deps struct {
	// Sessions holds availability selections; nil means in-process memory.
	Sessions assignment.SessionStore
	// Queue enables ?async=true imports when set.
	Queue scheduler.ImportQueue
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg Config, deps Deps, log *logger.Logger) *Module {
	repo := repository.New(pool)
	return newModule(repo, eventBus, val, cfg, deps, log)
}

// Store is every persistence port the module's services use.
type Store interface {
	repository.IntakeStore
	repository.LeadReader
	repository.AssignmentStore
	repository.DashboardReader
	repository.DuplicateStore
	repository.ActivityLogger
}

func newModule(repo Store, eventBus events.Bus, val *validator.Validator, cfg Config, deps Deps, log *logger.Logger) *Module {
	if deps.Sessions == nil {
		deps.Sessions = assignment.NewMemoryStore(cfg.GetAvailabilitySessionTTL())
	}

	// Record assignments and reviewer decisions on the lead timeline
	registerActivityLog(eventBus, repo, log)

	intakeSvc := intake.New(repo, eventBus, log)
	assignmentSvc := assignment.New(repo, deps.Sessions, eventBus, log, cfg.GetDefaultAssignmentPolicy(), cfg.GetAssignmentConcurrency())
	dashboardSvc := dashboard.New(repo, cfg.GetPipelineStages())
	reviewSvc := review.New(repo, eventBus, log)

	h := handler.New(handler.Services{
		Intake:     intakeSvc,
		Assignment: assignmentSvc,
		Dashboard:  dashboardSvc,
		Review:     reviewSvc,
		Leads:      repo,
		Queue:      deps.Queue,
	}, val, httpkit.NewImportRateLimiter(log).RateLimit())

	return &Module{handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
