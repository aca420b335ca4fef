package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// ImportRequest is a parsed spreadsheet: one object per row, header → cell.
type ImportRequest struct {
	Rows []Row `json:"rows" validate:"max=10000"`
}

// CreateLeadRequest is the manual lead form. Any key of CustomFields that
// names a fixed field is ignored.
type CreateLeadRequest struct {
	Name         string            `json:"name" validate:"required,max=200"`
	Phone        string            `json:"phone" validate:"required,phone"`
	Source       string            `json:"source" validate:"required,max=100"`
	Email        string            `json:"email,omitempty" validate:"omitempty,email"`
	City         string            `json:"city,omitempty" validate:"max=100"`
	State        string            `json:"state,omitempty" validate:"max=100"`
	Notes        string            `json:"notes,omitempty" validate:"max=2000"`
	AssignedTo   *uuid.UUID        `json:"assignedTo,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty" validate:"max=100"`
}

type ToggleAvailabilityRequest struct {
	TelecallerID uuid.UUID `json:"telecallerId" validate:"required"`
}

// SetPausedRequest is a pointer so an explicit false passes validation.
type SetPausedRequest struct {
	Paused *bool `json:"paused" validate:"required"`
}

type DistributeRequest struct {
	LeadIDs       []uuid.UUID `json:"leadIds" validate:"required,min=1,max=5000"`
	TelecallerIDs []uuid.UUID `json:"telecallerIds,omitempty"`
	Policy        string      `json:"policy,omitempty" validate:"max=50"`
}

type PromoteDuplicateRequest struct {
	TelecallerID uuid.UUID `json:"telecallerId" validate:"required"`
}

type PoolQuery struct {
	City   string `form:"city"`
	Source string `form:"source"`
	Status string `form:"status"`
}

// Response DTOs

type ImportResponse struct {
	Inserted        int    `json:"inserted"`
	Quarantined     int    `json:"quarantined"`
	Orphaned        int    `json:"orphaned,omitempty"`
	BatchSkipped    int    `json:"batchSkipped"`
	Rejected        int    `json:"rejected"`
	LeadsError      string `json:"leadsError,omitempty"`
	DuplicatesError string `json:"duplicatesError,omitempty"`
}

type ImportQueuedResponse struct {
	TaskID string `json:"taskId"`
	Rows   int    `json:"rows"`
}

type LeadResponse struct {
	ID             uuid.UUID         `json:"id"`
	AssignedTo     *uuid.UUID        `json:"assignedTo,omitempty"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	Email          *string           `json:"email,omitempty"`
	City           *string           `json:"city,omitempty"`
	State          *string           `json:"state,omitempty"`
	Source         string            `json:"source"`
	Status         string            `json:"status"`
	Notes          *string           `json:"notes,omitempty"`
	FollowUpDate   *time.Time        `json:"followUpDate,omitempty"`
	CustomFields   map[string]string `json:"customFields,omitempty"`
	TimesGenerated int               `json:"timesGenerated"`
	CreatedAt      time.Time         `json:"createdAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

type PoolFiltersResponse struct {
	Cities   []string `json:"cities"`
	Sources  []string `json:"sources"`
	Statuses []string `json:"statuses"`
}

type StageCountResponse struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

type TeamLoadResponse struct {
	TelecallerID uuid.UUID `json:"telecallerId"`
	Leads        int       `json:"leads"`
}

type DashboardResponse struct {
	Total                 int                  `json:"total"`
	Today                 int                  `json:"today"`
	Pending               int                  `json:"pending"`
	PendingFollowUp       int                  `json:"pendingFollowUp"`
	ByStage               []StageCountResponse `json:"byStage"`
	RepeatedPhones        int                  `json:"repeatedPhones"`
	QuarantinedDuplicates *int                 `json:"quarantinedDuplicates,omitempty"`
	TeamLoad              []TeamLoadResponse   `json:"teamLoad,omitempty"`
}

type CandidateResponse struct {
	TelecallerID uuid.UUID `json:"telecallerId"`
	FullName     string    `json:"fullName"`
	Selected     bool      `json:"selected"`
}

type AvailabilityResponse struct {
	Telecallers []CandidateResponse `json:"telecallers"`
}

type AssignmentResponse struct {
	LeadID       uuid.UUID `json:"leadId"`
	TelecallerID uuid.UUID `json:"telecallerId"`
}

type FailedAssignmentResponse struct {
	LeadID       uuid.UUID `json:"leadId"`
	TelecallerID uuid.UUID `json:"telecallerId"`
	Error        string    `json:"error"`
}

type DistributeResponse struct {
	Assigned []AssignmentResponse       `json:"assigned"`
	Failed   []FailedAssignmentResponse `json:"failed"`
}

type DuplicateResponse struct {
	ID              uuid.UUID         `json:"id"`
	OriginalLeadID  *uuid.UUID        `json:"originalLeadId,omitempty"`
	OriginalOwnerID *uuid.UUID        `json:"originalOwnerId,omitempty"`
	OriginalStatus  string            `json:"originalStatus,omitempty"`
	Reason          string            `json:"reason"`
	Name            string            `json:"name"`
	Phone           string            `json:"phone"`
	Email           *string           `json:"email,omitempty"`
	City            *string           `json:"city,omitempty"`
	State           *string           `json:"state,omitempty"`
	Source          string            `json:"source"`
	Status          string            `json:"status"`
	Notes           *string           `json:"notes,omitempty"`
	CustomFields    map[string]string `json:"customFields,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

type DuplicateGroupResponse struct {
	Phone   string              `json:"phone"`
	Records []DuplicateResponse `json:"records"`
}

type PromoteResponse struct {
	Lead              LeadResponse `json:"lead"`
	DuplicateRetained bool         `json:"duplicateRetained"`
}
