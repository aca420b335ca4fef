package dashboard

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Reader loads the snapshots the dashboard aggregates.
type Reader interface {
	ListLeadSummaries(ctx context.Context, managerID uuid.UUID, assignedTo *uuid.UUID) ([]domain.LeadSummary, error)
	CountDuplicates(ctx context.Context, managerID uuid.UUID) (int, error)
	CountLeadsByTelecaller(ctx context.Context, managerID uuid.UUID) (map[uuid.UUID]int, error)
}

// Summary is the dashboard payload. QuarantinedDuplicates comes from the
// stored duplicate collection; Stats.RepeatedPhones from the lead scan.
type Summary struct {
	Stats
	QuarantinedDuplicates int
	TeamLoad              map[uuid.UUID]int
}

// Service builds dashboards.
type Service struct {
	reader Reader
	stages []string
	now    func() time.Time
}

// New creates the dashboard service. stages may be nil.
func New(reader Reader, stages []string) *Service {
	return &Service{
		reader: reader,
		stages: stages,
		now:    time.Now,
	}
}

// ForManager summarizes every lead in the manager's scope, including the
// quarantine count and per-telecaller load.
func (s *Service) ForManager(ctx context.Context, managerID uuid.UUID) (Summary, error) {
	var (
		leads       []domain.LeadSummary
		quarantined int
		load        map[uuid.UUID]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = s.reader.ListLeadSummaries(gctx, managerID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		quarantined, err = s.reader.CountDuplicates(gctx, managerID)
		return err
	})
	g.Go(func() error {
		var err error
		load, err = s.reader.CountLeadsByTelecaller(gctx, managerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, apperr.Wrap(apperr.KindInternal, "could not load dashboard", err).WithOp("dashboard.ForManager")
	}

	return Summary{
		Stats:                 s.aggregate(leads),
		QuarantinedDuplicates: quarantined,
		TeamLoad:              load,
	}, nil
}

// ForTelecaller summarizes only the leads assigned to telecallerID.
func (s *Service) ForTelecaller(ctx context.Context, managerID, telecallerID uuid.UUID) (Summary, error) {
	leads, err := s.reader.ListLeadSummaries(ctx, managerID, &telecallerID)
	if err != nil {
		return Summary{}, apperr.Wrap(apperr.KindInternal, "could not load dashboard", err).WithOp("dashboard.ForTelecaller")
	}
	return Summary{Stats: s.aggregate(leads)}, nil
}

func (s *Service) aggregate(leads []domain.LeadSummary) Stats {
	now := s.now()
	return Aggregate(leads, now.UTC().Format(time.DateOnly), now, s.stages)
}
