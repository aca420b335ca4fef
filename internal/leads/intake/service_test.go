package intake

import (
	"context"
	"errors"
	"testing"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	existing     []domain.ExistingLead
	fetchErr     error
	insertErr    error
	duplicateErr error

	fetchCalls int
	inserted   []domain.Lead
	duplicates []domain.DuplicateRecord
}

func (f *fakeGateway) FetchExistingLeads(_ context.Context, _ uuid.UUID) ([]domain.ExistingLead, error) {
	f.fetchCalls++
	return f.existing, f.fetchErr
}

func (f *fakeGateway) InsertLeads(_ context.Context, _ uuid.UUID, leads []domain.Lead) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, leads...)
	return nil
}

func (f *fakeGateway) InsertDuplicates(_ context.Context, duplicates []domain.DuplicateRecord) error {
	if f.duplicateErr != nil {
		return f.duplicateErr
	}
	f.duplicates = append(f.duplicates, duplicates...)
	return nil
}

func mixedBatch(gw *fakeGateway) []domain.RawRecord {
	gw.existing = []domain.ExistingLead{{ID: uuid.New(), Phone: "300"}}
	return []domain.RawRecord{
		{"phone": "100"},
		{"phone": "200"},
		{"phone": "300"},
		{"phone": "200"},
		{"email": "nophone@x.com"},
	}
}

func TestIngestWritesBothHalves(t *testing.T) {
	gw := &fakeGateway{}
	batch := mixedBatch(gw)
	bus := events.NewInMemoryBus(nil)
	var got events.LeadsIngested
	bus.Subscribe(events.LeadsIngested{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got = e.(events.LeadsIngested)
		return nil
	}))

	report, err := New(gw, bus, nil).Ingest(context.Background(), uuid.New(), batch)
	bus.Wait()

	require.NoError(t, err)
	assert.Equal(t, Report{Inserted: 2, Quarantined: 1, BatchSkipped: 1, Rejected: 1}, report)
	assert.Len(t, gw.inserted, 2)
	assert.Len(t, gw.duplicates, 1)
	assert.Len(t, got.LeadIDs, 2)
	require.Len(t, got.Duplicates, 1)
	assert.Equal(t, gw.existing[0].ID, got.Duplicates[0].OriginalLeadID)
}

func TestIngestSnapshotFailureAbortsBeforeWriting(t *testing.T) {
	gw := &fakeGateway{fetchErr: errors.New("connection reset")}

	report, err := New(gw, nil, nil).Ingest(context.Background(), uuid.New(), []domain.RawRecord{{"phone": "1"}})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.Equal(t, Report{}, report)
	assert.Empty(t, gw.inserted)
	assert.Empty(t, gw.duplicates)
}

func TestIngestFreshFailureStillRecordsDuplicates(t *testing.T) {
	gw := &fakeGateway{insertErr: errors.New("insert leads: timeout")}
	batch := mixedBatch(gw)

	report, err := New(gw, nil, nil).Ingest(context.Background(), uuid.New(), batch)

	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.EqualError(t, report.FreshErr, "insert leads: timeout")
	assert.Equal(t, 1, report.Quarantined)
	assert.NoError(t, report.DuplicateErr)
	assert.Len(t, gw.duplicates, 1)
	assert.Equal(t, 1, report.BatchSkipped)
	assert.Equal(t, 1, report.Rejected)
}

func TestIngestFreshFailureHoldsBackDuplicatesOfUnwrittenLeads(t *testing.T) {
	stored := uuid.New()
	gw := &fakeGateway{
		existing:  []domain.ExistingLead{{ID: stored, Phone: "999"}},
		insertErr: errors.New("insert leads: timeout"),
	}
	batch := []domain.RawRecord{
		{"phone": "111", "email": "a@x.com"},
		{"phone": "111", "email": "b@x.com"},
		{"phone": "999"},
	}

	report, err := New(gw, nil, nil).Ingest(context.Background(), uuid.New(), batch)

	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Error(t, report.FreshErr)
	assert.NoError(t, report.DuplicateErr)
	assert.Equal(t, 1, report.Quarantined)
	assert.Equal(t, 1, report.Orphaned)
	require.Len(t, gw.duplicates, 1)
	assert.Equal(t, stored, gw.duplicates[0].OriginalLeadID)
}

func TestIngestKeepsInBatchDuplicatesWhenFreshLeadsAreWritten(t *testing.T) {
	gw := &fakeGateway{}
	batch := []domain.RawRecord{
		{"phone": "111", "email": "a@x.com"},
		{"phone": "111", "email": "b@x.com"},
	}

	report, err := New(gw, nil, nil).Ingest(context.Background(), uuid.New(), batch)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Quarantined)
	assert.Zero(t, report.Orphaned)
	require.Len(t, gw.duplicates, 1)
	assert.Equal(t, gw.inserted[0].ID, gw.duplicates[0].OriginalLeadID)
}

func TestIngestDuplicateFailureKeepsFreshCount(t *testing.T) {
	gw := &fakeGateway{duplicateErr: errors.New("insert duplicates: constraint")}
	batch := mixedBatch(gw)

	report, err := New(gw, nil, nil).Ingest(context.Background(), uuid.New(), batch)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Len(t, gw.inserted, 2)
	assert.Zero(t, report.Quarantined)
	assert.Error(t, report.DuplicateErr)
	assert.NoError(t, report.FreshErr)
}

func TestIngestEmptyBatchTouchesNothing(t *testing.T) {
	gw := &fakeGateway{}

	report, err := New(gw, nil, nil).Ingest(context.Background(), uuid.New(), nil)

	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.Zero(t, gw.fetchCalls)
}

func TestIngestRequiresManagerScope(t *testing.T) {
	_, err := New(&fakeGateway{}, nil, nil).Ingest(context.Background(), uuid.Nil, []domain.RawRecord{{"phone": "1"}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestIngestStampsManagerOnEveryRecord(t *testing.T) {
	gw := &fakeGateway{}
	batch := mixedBatch(gw)
	manager := uuid.New()

	_, err := New(gw, nil, nil).Ingest(context.Background(), manager, append(batch, domain.RawRecord{
		"phone":      "900",
		"manager_id": uuid.NewString(),
	}))

	require.NoError(t, err)
	for _, lead := range gw.inserted {
		assert.Equal(t, manager, lead.ManagerID)
	}
	for _, dup := range gw.duplicates {
		assert.Equal(t, manager, dup.ManagerID)
	}
}

func TestSubmitStoresNotesOnTheLead(t *testing.T) {
	gw := &fakeGateway{}

	report, err := New(gw, nil, nil).Submit(context.Background(), uuid.New(), domain.RawRecord{"phone": "9876543210"}, "  call after 6 ")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	require.Len(t, gw.inserted, 1)
	require.NotNil(t, gw.inserted[0].Notes)
	assert.Equal(t, "call after 6", *gw.inserted[0].Notes)
	assert.Nil(t, gw.inserted[0].CustomFields)
}

func TestSubmitStoresNotesOnTheDuplicate(t *testing.T) {
	gw := &fakeGateway{existing: []domain.ExistingLead{{ID: uuid.New(), Phone: "9876543210"}}}

	report, err := New(gw, nil, nil).Submit(context.Background(), uuid.New(), domain.RawRecord{"phone": "98765-43210"}, "second call")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Quarantined)
	require.Len(t, gw.duplicates, 1)
	require.NotNil(t, gw.duplicates[0].Notes)
	assert.Equal(t, "second call", *gw.duplicates[0].Notes)
}
