package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func stageCount(stats Stats, stage string) int {
	for _, sc := range stats.ByStage {
		if sc.Stage == stage {
			return sc.Count
		}
	}
	return -1
}

func TestTodayIsAStringPrefixMatch(t *testing.T) {
	leads := []domain.LeadSummary{{Phone: "1", Status: "New", CreatedAt: "2024-05-01T23:59:59Z"}}
	now := time.Date(2024, 5, 2, 3, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	assert.Equal(t, 1, Aggregate(leads, "2024-05-01", now, nil).Today)
	assert.Equal(t, 0, Aggregate(leads, "2024-05-02", now, nil).Today)
}

func TestAggregateCounts(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := ptrTime(now.Add(-time.Hour))
	future := ptrTime(now.Add(time.Hour))

	leads := []domain.LeadSummary{
		{Phone: "111", Status: "New", CreatedAt: "2024-05-01T08:00:00Z", FollowUpDate: past},
		{Phone: "111", Status: `"new"`, CreatedAt: "2024-04-30T08:00:00Z"},
		{Phone: "222", Status: "Interested", CreatedAt: "2024-05-01T09:00:00Z", FollowUpDate: past},
		{Phone: "22-2", Status: "interested ", CreatedAt: "2024-04-01T09:00:00Z", FollowUpDate: future},
		{Phone: "333", Status: "Closed Won", CreatedAt: "2024-04-01T09:00:00Z", FollowUpDate: past},
		{Phone: "", Status: "Not_Connected", CreatedAt: "2024-04-01T09:00:00Z", FollowUpDate: past},
		{Phone: "", Status: "Mystery", CreatedAt: "2024-04-01T09:00:00Z"},
	}

	stats := Aggregate(leads, "2024-05-01", now, nil)

	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 2, stats.PendingFollowUp)
	assert.Equal(t, 2, stats.RepeatedPhones)
	assert.Equal(t, 2, stageCount(stats, domain.StatusNew))
	assert.Equal(t, 2, stageCount(stats, domain.StatusInterested))
	assert.Equal(t, 1, stageCount(stats, domain.StatusClosedWon))
	assert.Equal(t, 1, stageCount(stats, domain.StatusNotConnected))
	assert.Equal(t, 0, stageCount(stats, domain.StatusClosedLost))
	assert.Len(t, stats.ByStage, len(domain.DefaultStages))
}

func TestAggregateCustomStages(t *testing.T) {
	leads := []domain.LeadSummary{{Status: "Hot"}, {Status: "hot"}, {Status: "New"}}

	stats := Aggregate(leads, "", time.Now(), []string{"Hot", "Cold"})

	assert.Equal(t, []StageCount{{Stage: "Hot", Count: 2}, {Stage: "Cold", Count: 0}}, stats.ByStage)
	assert.Zero(t, stats.Today)
}

type fakeReader struct {
	leads      []domain.LeadSummary
	duplicates int
	load       map[uuid.UUID]int
	err        error
	assignedTo *uuid.UUID
}

func (f *fakeReader) ListLeadSummaries(_ context.Context, _ uuid.UUID, assignedTo *uuid.UUID) ([]domain.LeadSummary, error) {
	f.assignedTo = assignedTo
	return f.leads, f.err
}

func (f *fakeReader) CountDuplicates(context.Context, uuid.UUID) (int, error) {
	return f.duplicates, nil
}

func (f *fakeReader) CountLeadsByTelecaller(context.Context, uuid.UUID) (map[uuid.UUID]int, error) {
	return f.load, nil
}

func TestForManagerKeepsDuplicateSignalsSeparate(t *testing.T) {
	telecaller := uuid.New()
	reader := &fakeReader{
		leads:      []domain.LeadSummary{{Phone: "1", Status: "New"}, {Phone: "1", Status: "New"}},
		duplicates: 5,
		load:       map[uuid.UUID]int{telecaller: 2},
	}
	svc := New(reader, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	summary, err := svc.ForManager(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.RepeatedPhones)
	assert.Equal(t, 5, summary.QuarantinedDuplicates)
	assert.Equal(t, 2, summary.TeamLoad[telecaller])
	assert.Nil(t, reader.assignedTo)
}

func TestForTelecallerFiltersByAssignee(t *testing.T) {
	reader := &fakeReader{leads: []domain.LeadSummary{{Phone: "1", Status: "New"}}}
	telecaller := uuid.New()

	summary, err := New(reader, nil).ForTelecaller(context.Background(), uuid.New(), telecaller)

	require.NoError(t, err)
	require.NotNil(t, reader.assignedTo)
	assert.Equal(t, telecaller, *reader.assignedTo)
	assert.Equal(t, 1, summary.Total)
	assert.Zero(t, summary.QuarantinedDuplicates)
}

func TestForManagerWrapsReadErrors(t *testing.T) {
	_, err := New(&fakeReader{err: errors.New("down")}, nil).ForManager(context.Background(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
