// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadflow_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Intake Events
// =============================================================================

// QuarantinedLead is one written duplicate and the lead it collided with.
type QuarantinedLead struct {
	DuplicateID    uuid.UUID `json:"duplicateId"`
	OriginalLeadID uuid.UUID `json:"originalLeadId"`
}

// LeadsIngested is published after an ingest run wrote at least one record.
type LeadsIngested struct {
	BaseEvent
	ManagerID       uuid.UUID         `json:"managerId"`
	LeadIDs         []uuid.UUID       `json:"leadIds"`
	Duplicates      []QuarantinedLead `json:"duplicates"`
	BatchSkipped    int               `json:"batchSkipped"`
	Rejected        int               `json:"rejected"`
	FreshFailed     bool              `json:"freshFailed"`
	DuplicateFailed bool              `json:"duplicateFailed"`
}

func (e LeadsIngested) EventName() string { return "leads.ingested" }

// =============================================================================
// Assignment Events
// =============================================================================

// LeadAssignment is one applied lead→telecaller update.
type LeadAssignment struct {
	LeadID       uuid.UUID `json:"leadId"`
	TelecallerID uuid.UUID `json:"telecallerId"`
}

// LeadsDistributed is published after a distribution run with the updates
// that succeeded.
type LeadsDistributed struct {
	BaseEvent
	ManagerID   uuid.UUID        `json:"managerId"`
	ActorID     uuid.UUID        `json:"actorId"`
	Policy      string           `json:"policy"`
	Assignments []LeadAssignment `json:"assignments"`
	Failed      int              `json:"failed"`
}

func (e LeadsDistributed) EventName() string { return "leads.distributed" }

// =============================================================================
// Duplicate Review Events
// =============================================================================

// DuplicateResolved is published when a reviewer disposes of a quarantined record.
type DuplicateResolved struct {
	BaseEvent
	ManagerID      uuid.UUID  `json:"managerId"`
	ActorID        uuid.UUID  `json:"actorId"`
	DuplicateID    uuid.UUID  `json:"duplicateId"`
	OriginalLeadID uuid.UUID  `json:"originalLeadId"`
	Action         string     `json:"action"`
	PromotedLeadID *uuid.UUID `json:"promotedLeadId,omitempty"`
	TelecallerID   *uuid.UUID `json:"telecallerId,omitempty"`
}

func (e DuplicateResolved) EventName() string { return "leads.duplicate.resolved" }
