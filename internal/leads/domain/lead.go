package domain

import (
	"time"

	"github.com/google/uuid"
)

// DuplicateReason is recorded on every quarantined record.
const DuplicateReason = "duplicate phone or email"

// Lead is a live prospective customer owned by a manager scope.
type Lead struct {
	ID             uuid.UUID
	ManagerID      uuid.UUID
	AssignedTo     *uuid.UUID
	Name           string
	Phone          string
	Email          *string
	City           *string
	State          *string
	Source         string
	Status         string
	Notes          *string
	FollowUpDate   *time.Time
	CustomFields   CustomFields
	TimesGenerated int
	CreatedAt      time.Time
}

// DuplicateRecord is a quarantined submission that collided with an
// existing lead. It is never treated as a lead.
type DuplicateRecord struct {
	ID              uuid.UUID
	ManagerID       uuid.UUID
	AssignedTo      *uuid.UUID
	OriginalLeadID  uuid.UUID
	OriginalOwnerID *uuid.UUID
	OriginalStatus  string
	Reason          string
	Name            string
	Phone           string
	Email           *string
	City            *string
	State           *string
	Source          string
	Status          string
	Notes           *string
	CustomFields    CustomFields
	CreatedAt       time.Time
}

// ExistingLead is the slice of a stored lead needed for collision checks.
type ExistingLead struct {
	ID             uuid.UUID
	ManagerID      uuid.UUID
	AssignedTo     *uuid.UUID
	Phone          string
	Email          string
	Status         string
	TimesGenerated int
}

// LeadSummary is the read model the dashboard aggregates over.
// CreatedAt is the stored ISO-8601 UTC timestamp text.
type LeadSummary struct {
	ID           uuid.UUID
	AssignedTo   *uuid.UUID
	Phone        string
	Status       string
	CreatedAt    string
	FollowUpDate *time.Time
}

// Telecaller is a member of a manager's team.
type Telecaller struct {
	ID        uuid.UUID
	ManagerID uuid.UUID
	FullName  string
	IsPaused  bool
}

// Promote turns a quarantined record into a new live lead for telecallerID.
// The pipeline restarts at "New" and the submission counter at one.
func (d DuplicateRecord) Promote(id, telecallerID uuid.UUID, now time.Time) Lead {
	assignee := telecallerID
	return Lead{
		ID:             id,
		ManagerID:      d.ManagerID,
		AssignedTo:     &assignee,
		Name:           d.Name,
		Phone:          d.Phone,
		Email:          d.Email,
		City:           d.City,
		State:          d.State,
		Source:         d.Source,
		Status:         StatusNew,
		Notes:          d.Notes,
		CustomFields:   d.CustomFields,
		TimesGenerated: 1,
		CreatedAt:      now,
	}
}
