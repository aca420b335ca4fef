package leads

import (
	"context"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Activity actions written to lead_activity.
const (
	ActivityIngested          = "ingested"
	ActivityResubmitted       = "resubmitted"
	ActivityAssigned          = "assigned"
	ActivityPromoted          = "promoted_from_duplicate"
	ActivityDuplicateResolved = "duplicate_resolved"
)

func registerActivityLog(bus events.Bus, store repository.ActivityLogger, log *logger.Logger) {
	if bus == nil {
		return
	}
	if log == nil {
		log = logger.Discard()
	}

	// Import runs have no actor; the rows carry a NULL actor_id.
	events.On(bus, func(ctx context.Context, e events.LeadsIngested) error {
		for _, id := range e.LeadIDs {
			if err := store.AddActivity(ctx, id, uuid.Nil, ActivityIngested, nil); err != nil {
				log.Warn("failed to record ingest activity", "leadId", id, "error", err)
			}
		}
		for _, d := range e.Duplicates {
			err := store.AddActivity(ctx, d.OriginalLeadID, uuid.Nil, ActivityResubmitted, map[string]any{
				"duplicateId": d.DuplicateID,
			})
			if err != nil {
				log.Warn("failed to record resubmission activity", "leadId", d.OriginalLeadID, "error", err)
			}
		}
		return nil
	})

	events.On(bus, func(ctx context.Context, e events.LeadsDistributed) error {
		for _, a := range e.Assignments {
			err := store.AddActivity(ctx, a.LeadID, e.ActorID, ActivityAssigned, map[string]any{
				"telecallerId": a.TelecallerID,
				"policy":       e.Policy,
			})
			if err != nil {
				log.Warn("failed to record assignment activity", "leadId", a.LeadID, "error", err)
			}
		}
		return nil
	})

	events.On(bus, func(ctx context.Context, e events.DuplicateResolved) error {
		if e.PromotedLeadID != nil {
			return store.AddActivity(ctx, *e.PromotedLeadID, e.ActorID, ActivityPromoted, map[string]any{
				"duplicateId":    e.DuplicateID,
				"originalLeadId": e.OriginalLeadID,
			})
		}
		// The original may have been deleted since the collision.
		if e.OriginalLeadID == uuid.Nil {
			return nil
		}
		return store.AddActivity(ctx, e.OriginalLeadID, e.ActorID, ActivityDuplicateResolved, map[string]any{
			"duplicateId": e.DuplicateID,
			"action":      e.Action,
		})
	})
}
