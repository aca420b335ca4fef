package leads

import (
	"context"
	"sync"
	"testing"

	"leadflow_backend/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type activity struct {
	leadID uuid.UUID
	action string
	meta   map[string]any
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []activity
}

func (r *recordingActivity) AddActivity(_ context.Context, leadID, _ uuid.UUID, action string, meta map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, activity{leadID: leadID, action: action, meta: meta})
	return nil
}

func TestActivityLogRecordsAssignments(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	store := &recordingActivity{}
	registerActivityLog(bus, store, nil)

	l1, l2 := uuid.New(), uuid.New()
	require.NoError(t, bus.PublishSync(context.Background(), events.LeadsDistributed{
		Policy: "round_robin",
		Assignments: []events.LeadAssignment{
			{LeadID: l1, TelecallerID: uuid.New()},
			{LeadID: l2, TelecallerID: uuid.New()},
		},
	}))

	require.Len(t, store.entries, 2)
	assert.Equal(t, l1, store.entries[0].leadID)
	assert.Equal(t, ActivityAssigned, store.entries[1].action)
	assert.Equal(t, "round_robin", store.entries[1].meta["policy"])
}

func TestActivityLogRecordsReviewerDecisions(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	store := &recordingActivity{}
	registerActivityLog(bus, store, nil)

	original, promoted := uuid.New(), uuid.New()
	require.NoError(t, bus.PublishSync(context.Background(), events.DuplicateResolved{
		DuplicateID:    uuid.New(),
		OriginalLeadID: original,
		Action:         "ignore",
	}))
	require.NoError(t, bus.PublishSync(context.Background(), events.DuplicateResolved{
		DuplicateID:    uuid.New(),
		OriginalLeadID: original,
		Action:         "promote",
		PromotedLeadID: &promoted,
	}))
	require.NoError(t, bus.PublishSync(context.Background(), events.DuplicateResolved{
		DuplicateID: uuid.New(),
		Action:      "merge",
	}))

	require.Len(t, store.entries, 2)
	assert.Equal(t, activity{leadID: original, action: ActivityDuplicateResolved, meta: store.entries[0].meta}, store.entries[0])
	assert.Equal(t, "ignore", store.entries[0].meta["action"])
	assert.Equal(t, promoted, store.entries[1].leadID)
	assert.Equal(t, ActivityPromoted, store.entries[1].action)
}

func TestActivityLogRecordsIngestedLeadsAndResubmissions(t *testing.T) {
	bus := events.NewInMemoryBus(nil)
	store := &recordingActivity{}
	registerActivityLog(bus, store, nil)

	fresh, original, dup := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, bus.PublishSync(context.Background(), events.LeadsIngested{
		LeadIDs:    []uuid.UUID{fresh},
		Duplicates: []events.QuarantinedLead{{DuplicateID: dup, OriginalLeadID: original}},
	}))

	require.Len(t, store.entries, 2)
	assert.Equal(t, fresh, store.entries[0].leadID)
	assert.Equal(t, ActivityIngested, store.entries[0].action)
	assert.Equal(t, original, store.entries[1].leadID)
	assert.Equal(t, ActivityResubmitted, store.entries[1].action)
	assert.Equal(t, dup, store.entries[1].meta["duplicateId"])
}
