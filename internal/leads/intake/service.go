package intake

import (
	"context"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"

	"github.com/google/uuid"
)

// Gateway is the persistence contract the ingest pipeline needs.
type Gateway interface {
	FetchExistingLeads(ctx context.Context, managerID uuid.UUID) ([]domain.ExistingLead, error)
	InsertLeads(ctx context.Context, managerID uuid.UUID, leads []domain.Lead) error
	InsertDuplicates(ctx context.Context, duplicates []domain.DuplicateRecord) error
}

// Report is what one ingest run tells its caller. Inserted and Quarantined
// are zero when the matching write failed, with the cause in FreshErr or
// DuplicateErr. Orphaned counts duplicates of same-batch leads that were not
// written because those leads failed to insert.
type Report struct {
	Inserted     int
	Quarantined  int
	Orphaned     int
	BatchSkipped int
	Rejected     int
	FreshErr     error
	DuplicateErr error
}

// Service runs ingest batches for a manager scope.
type Service struct {
	gateway Gateway
	bus     events.Bus
	log     *logger.Logger
	now     func() time.Time
	newID   func() uuid.UUID
}

// New creates an ingest service.
func New(gateway Gateway, bus events.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		gateway: gateway,
		bus:     bus,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.New,
	}
}

// Ingest classifies batch against the manager's current leads and writes
// fresh leads and quarantined duplicates as two independent inserts.
//
// A failed snapshot read aborts the run before anything is written. A failed
// insert is reported in the Report, not as the returned error.
func (s *Service) Ingest(ctx context.Context, managerID uuid.UUID, batch []domain.RawRecord) (Report, error) {
	return s.ingest(ctx, managerID, batch, nil)
}

// Submit ingests one manually entered record. notes is stored on the
// resulting lead, or on its duplicate, rather than as a custom field.
func (s *Service) Submit(ctx context.Context, managerID uuid.UUID, record domain.RawRecord, notes string) (Report, error) {
	var text *string
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		text = &trimmed
	}
	return s.ingest(ctx, managerID, []domain.RawRecord{record}, text)
}

func (s *Service) ingest(ctx context.Context, managerID uuid.UUID, batch []domain.RawRecord, notes *string) (Report, error) {
	if managerID == uuid.Nil {
		return Report{}, apperr.Validation("manager scope is required").WithOp("intake.Ingest")
	}
	if len(batch) == 0 {
		return Report{}, nil
	}

	existing, err := s.gateway.FetchExistingLeads(ctx, managerID)
	if err != nil {
		s.log.DatabaseError("fetch existing leads", err)
		return Report{}, apperr.Wrap(apperr.KindInternal, "could not read existing leads; nothing was imported", err).WithOp("intake.Ingest")
	}

	outcome := Deduplicate(batch, existing, Options{
		ManagerID: managerID,
		Now:       s.now(),
		NewID:     s.newID,
		Notes:     notes,
	})

	report := Report{
		BatchSkipped: outcome.BatchSkipped,
		Rejected:     outcome.Rejected,
	}

	// A dispatched batch runs to completion even if the caller goes away.
	writeCtx := context.WithoutCancel(ctx)

	if len(outcome.Fresh) > 0 {
		if err := s.gateway.InsertLeads(writeCtx, managerID, outcome.Fresh); err != nil {
			report.FreshErr = err
			metrics.RecordIngestWriteFailure("leads")
		} else {
			report.Inserted = len(outcome.Fresh)
		}
	}

	duplicates := outcome.Duplicates
	if report.FreshErr != nil {
		duplicates = withoutUnwrittenOriginals(outcome.Duplicates, outcome.Fresh)
		report.Orphaned = len(outcome.Duplicates) - len(duplicates)
	}

	if len(duplicates) > 0 {
		if err := s.gateway.InsertDuplicates(writeCtx, duplicates); err != nil {
			report.DuplicateErr = err
			metrics.RecordIngestWriteFailure("duplicates")
		} else {
			report.Quarantined = len(duplicates)
		}
	}
	outcome.Duplicates = duplicates

	metrics.RecordIngest(report.Inserted, report.Quarantined, report.BatchSkipped, report.Rejected)
	s.log.WithContext(ctx).IngestSummary(managerID.String(), report.Inserted, report.Quarantined,
		report.BatchSkipped, report.Rejected, report.FreshErr, report.DuplicateErr)
	s.publish(ctx, managerID, outcome, report)

	return report, nil
}

func (s *Service) publish(ctx context.Context, managerID uuid.UUID, outcome Outcome, report Report) {
	if s.bus == nil || (report.Inserted == 0 && report.Quarantined == 0) {
		return
	}

	event := events.LeadsIngested{
		BaseEvent:       events.NewBaseEvent(),
		ManagerID:       managerID,
		BatchSkipped:    report.BatchSkipped,
		Rejected:        report.Rejected,
		FreshFailed:     report.FreshErr != nil,
		DuplicateFailed: report.DuplicateErr != nil,
	}
	if report.Inserted > 0 {
		for _, lead := range outcome.Fresh {
			event.LeadIDs = append(event.LeadIDs, lead.ID)
		}
	}
	if report.Quarantined > 0 {
		for _, dup := range outcome.Duplicates {
			event.Duplicates = append(event.Duplicates, events.QuarantinedLead{
				DuplicateID:    dup.ID,
				OriginalLeadID: dup.OriginalLeadID,
			})
		}
	}
	s.bus.Publish(ctx, event)
}

// withoutUnwrittenOriginals drops duplicates attributed to a lead of fresh.
// Their original_lead_id would not resolve and would fail the whole
// duplicate write.
func withoutUnwrittenOriginals(duplicates []domain.DuplicateRecord, fresh []domain.Lead) []domain.DuplicateRecord {
	unwritten := make(map[uuid.UUID]struct{}, len(fresh))
	for _, lead := range fresh {
		unwritten[lead.ID] = struct{}{}
	}
	kept := make([]domain.DuplicateRecord, 0, len(duplicates))
	for _, dup := range duplicates {
		if _, ok := unwritten[dup.OriginalLeadID]; ok {
			continue
		}
		kept = append(kept, dup)
	}
	return kept
}
