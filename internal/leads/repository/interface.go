package repository

import (
	"context"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// IntakeStore serves the ingest pipeline.
type IntakeStore interface {
	FetchExistingLeads(ctx context.Context, managerID uuid.UUID) ([]domain.ExistingLead, error)
	InsertLeads(ctx context.Context, managerID uuid.UUID, leads []domain.Lead) error
	InsertDuplicates(ctx context.Context, duplicates []domain.DuplicateRecord) error
}

// LeadReader lists leads for display.
type LeadReader interface {
	ListLeads(ctx context.Context, managerID uuid.UUID, assignedTo *uuid.UUID) ([]domain.Lead, error)
	ListUnassigned(ctx context.Context, managerID uuid.UUID, filter PoolFilter) ([]domain.Lead, error)
	PoolFilterOptions(ctx context.Context, managerID uuid.UUID) (FilterOptions, error)
}

// AssignmentStore serves the distributor.
type AssignmentStore interface {
	ListTelecallers(ctx context.Context, managerID uuid.UUID) ([]domain.Telecaller, error)
	UpdateLeadAssignment(ctx context.Context, managerID, leadID, telecallerID uuid.UUID) error
	SetTelecallerPaused(ctx context.Context, managerID, telecallerID uuid.UUID, paused bool) error
}

// DashboardReader serves the dashboard.
type DashboardReader interface {
	ListLeadSummaries(ctx context.Context, managerID uuid.UUID, assignedTo *uuid.UUID) ([]domain.LeadSummary, error)
	CountDuplicates(ctx context.Context, managerID uuid.UUID) (int, error)
	CountLeadsByTelecaller(ctx context.Context, managerID uuid.UUID) (map[uuid.UUID]int, error)
}

// DuplicateStore serves duplicate review.
type DuplicateStore interface {
	ListDuplicates(ctx context.Context, managerID uuid.UUID) ([]domain.DuplicateRecord, error)
	GetDuplicate(ctx context.Context, managerID, duplicateID uuid.UUID) (domain.DuplicateRecord, error)
	DeleteDuplicate(ctx context.Context, managerID, duplicateID uuid.UUID) error
	InsertLead(ctx context.Context, lead domain.Lead) error
}

// ActivityLogger records activity/audit trail on leads.
type ActivityLogger interface {
	AddActivity(ctx context.Context, leadID uuid.UUID, actorID uuid.UUID, action string, meta map[string]any) error
}

// Compile-time checks
var (
	_ IntakeStore     = (*Repository)(nil)
	_ LeadReader      = (*Repository)(nil)
	_ AssignmentStore = (*Repository)(nil)
	_ DashboardReader = (*Repository)(nil)
	_ DuplicateStore  = (*Repository)(nil)
	_ ActivityLogger  = (*Repository)(nil)
)
