// Package review handles reviewer decisions on quarantined duplicate records.
// Every action removes the record from quarantine; promote also creates a
// new live lead from it.
package review

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Reviewer actions.
const (
	ActionIgnore  = "ignore"
	ActionMerge   = "merge"
	ActionPromote = "promote"
)

// Store is the persistence the review service needs.
type Store interface {
	ListDuplicates(ctx context.Context, managerID uuid.UUID) ([]domain.DuplicateRecord, error)
	GetDuplicate(ctx context.Context, managerID, duplicateID uuid.UUID) (domain.DuplicateRecord, error)
	DeleteDuplicate(ctx context.Context, managerID, duplicateID uuid.UUID) error
	InsertLead(ctx context.Context, lead domain.Lead) error
	ListTelecallers(ctx context.Context, managerID uuid.UUID) ([]domain.Telecaller, error)
}

// Group is every quarantined record sharing one phone value.
type Group struct {
	Phone   string
	Records []domain.DuplicateRecord
}

// PromoteResult describes a promotion. When DeleteErr is set the new lead
// exists but the quarantined record is still stored.
type PromoteResult struct {
	Lead      domain.Lead
	DeleteErr error
}

// Service applies reviewer actions within a manager scope.
type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
	newID func() uuid.UUID
}

// New creates the review service.
func New(store Store, bus events.Bus, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store: store,
		bus:   bus,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

// List returns the manager's quarantined records grouped by phone, groups in
// order of first appearance.
func (s *Service) List(ctx context.Context, managerID uuid.UUID) ([]Group, error) {
	records, err := s.store.ListDuplicates(ctx, managerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list duplicates", err).WithOp("review.List")
	}

	groups := make([]Group, 0)
	index := make(map[string]int)
	for _, record := range records {
		key, _ := domain.NormalizePhone(record.Phone)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Phone: record.Phone})
		}
		groups[i].Records = append(groups[i].Records, record)
	}
	return groups, nil
}

// Ignore discards a quarantined record.
func (s *Service) Ignore(ctx context.Context, managerID, actorID, duplicateID uuid.UUID) error {
	return s.discard(ctx, managerID, actorID, duplicateID, ActionIgnore)
}

// Merge discards a quarantined record. Nothing is copied onto the original
// lead.
func (s *Service) Merge(ctx context.Context, managerID, actorID, duplicateID uuid.UUID) error {
	return s.discard(ctx, managerID, actorID, duplicateID, ActionMerge)
}

func (s *Service) discard(ctx context.Context, managerID, actorID, duplicateID uuid.UUID, action string) error {
	record, err := s.get(ctx, managerID, duplicateID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteDuplicate(ctx, managerID, duplicateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("duplicate not found")
		}
		return apperr.Wrap(apperr.KindInternal, "could not remove duplicate", err).WithOp("review." + action)
	}

	s.publish(ctx, events.DuplicateResolved{
		BaseEvent:      events.NewBaseEvent(),
		ManagerID:      managerID,
		ActorID:        actorID,
		DuplicateID:    duplicateID,
		OriginalLeadID: record.OriginalLeadID,
		Action:         action,
	})
	return nil
}

// Promote creates a live lead from a quarantined record, assigned to
// telecallerID, then removes the record. If the insert fails nothing is
// removed.
func (s *Service) Promote(ctx context.Context, managerID, actorID, duplicateID, telecallerID uuid.UUID) (PromoteResult, error) {
	if telecallerID == uuid.Nil {
		return PromoteResult{}, apperr.Validation("telecaller is required")
	}

	record, err := s.get(ctx, managerID, duplicateID)
	if err != nil {
		return PromoteResult{}, err
	}

	team, err := s.store.ListTelecallers(ctx, managerID)
	if err != nil {
		return PromoteResult{}, apperr.Wrap(apperr.KindInternal, "could not load telecallers", err).WithOp("review.Promote")
	}
	if !onTeam(team, telecallerID) {
		return PromoteResult{}, apperr.Validation("telecaller is not an active member of this team")
	}

	lead := record.Promote(s.newID(), telecallerID, s.now())
	if err := s.store.InsertLead(ctx, lead); err != nil {
		return PromoteResult{}, apperr.Wrap(apperr.KindInternal, "could not create lead; the duplicate was kept", err).WithOp("review.Promote")
	}

	result := PromoteResult{Lead: lead}
	if err := s.store.DeleteDuplicate(context.WithoutCancel(ctx), managerID, duplicateID); err != nil {
		result.DeleteErr = err
		s.log.Error("promoted duplicate could not be removed",
			"duplicateId", duplicateID,
			"leadId", lead.ID,
			"error", err,
		)
	}

	promoted, assignee := lead.ID, telecallerID
	s.publish(ctx, events.DuplicateResolved{
		BaseEvent:      events.NewBaseEvent(),
		ManagerID:      managerID,
		ActorID:        actorID,
		DuplicateID:    duplicateID,
		OriginalLeadID: record.OriginalLeadID,
		Action:         ActionPromote,
		PromotedLeadID: &promoted,
		TelecallerID:   &assignee,
	})
	return result, nil
}

func (s *Service) get(ctx context.Context, managerID, duplicateID uuid.UUID) (domain.DuplicateRecord, error) {
	record, err := s.store.GetDuplicate(ctx, managerID, duplicateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.DuplicateRecord{}, apperr.NotFound("duplicate not found")
		}
		return domain.DuplicateRecord{}, apperr.Wrap(apperr.KindInternal, "could not load duplicate", err).WithOp("review.get")
	}
	return record, nil
}

func (s *Service) publish(ctx context.Context, event events.DuplicateResolved) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func onTeam(team []domain.Telecaller, id uuid.UUID) bool {
	for _, t := range team {
		if t.ID == id {
			return true
		}
	}
	return false
}
