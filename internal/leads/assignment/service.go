package assignment

import (
	"context"
	"errors"
	"slices"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"

	"github.com/google/uuid"
)

// Directory lists the telecallers of a manager's team in display order.
type Directory interface {
	ListTelecallers(ctx context.Context, managerID uuid.UUID) ([]domain.Telecaller, error)
}

// Roster changes the persistent paused flag of a telecaller.
type Roster interface {
	SetTelecallerPaused(ctx context.Context, managerID, telecallerID uuid.UUID, paused bool) error
}

// Repository is everything the assignment service reads and writes.
type Repository interface {
	Directory
	Updater
	Roster
}

// Candidate is a telecaller with their selection state for the current session.
type Candidate struct {
	Telecaller domain.Telecaller
	Selected   bool
}

// DistributeInput is one manager-initiated distribution run.
// An empty TelecallerIDs means the caller's session selection.
type DistributeInput struct {
	ManagerID     uuid.UUID
	CallerID      uuid.UUID
	LeadIDs       []uuid.UUID
	TelecallerIDs []uuid.UUID
	Policy        string
}

// Service runs distributions and manages availability sessions.
type Service struct {
	repo          Repository
	sessions      SessionStore
	distributor   *Distributor
	bus           events.Bus
	log           *logger.Logger
	defaultPolicy string
}

// New creates the assignment service.
func New(repo Repository, sessions SessionStore, bus events.Bus, log *logger.Logger, defaultPolicy string, concurrency int) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if defaultPolicy == "" {
		defaultPolicy = string(PolicyRoundRobin)
	}
	return &Service{
		repo:          repo,
		sessions:      sessions,
		distributor:   NewDistributor(repo, concurrency),
		bus:           bus,
		log:           log,
		defaultPolicy: defaultPolicy,
	}
}

// Availability returns the caller's session selection over the manager's
// team. A new session starts with every active telecaller selected.
func (s *Service) Availability(ctx context.Context, managerID, callerID uuid.UUID) ([]Candidate, error) {
	team, selected, err := s.loadSession(ctx, managerID, callerID)
	if err != nil {
		return nil, err
	}
	return candidates(team, selected), nil
}

// Toggle flips one telecaller's selection for the caller's session.
func (s *Service) Toggle(ctx context.Context, managerID, callerID, telecallerID uuid.UUID) ([]Candidate, error) {
	team, selected, err := s.loadSession(ctx, managerID, callerID)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(team, func(t domain.Telecaller) bool { return t.ID == telecallerID }) {
		return nil, apperr.NotFound("telecaller is not an active member of this team").WithOp("assignment.Toggle")
	}

	if idx := slices.Index(selected, telecallerID); idx >= 0 {
		selected = slices.Delete(selected, idx, idx+1)
	} else {
		selected = append(selected, telecallerID)
	}

	if err := s.sessions.Save(ctx, SessionKey(managerID, callerID), selected); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not save availability session", err).WithOp("assignment.Toggle")
	}
	return candidates(team, selected), nil
}

// Reset discards the caller's session; the next read starts from the default.
func (s *Service) Reset(ctx context.Context, managerID, callerID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, SessionKey(managerID, callerID)); err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not reset availability session", err).WithOp("assignment.Reset")
	}
	return nil
}

// SetPaused pauses or resumes one of the manager's telecallers. A paused
// telecaller is left out of every session default and distribution until
// resumed; selections in existing sessions are not rewritten.
func (s *Service) SetPaused(ctx context.Context, managerID, telecallerID uuid.UUID, paused bool) error {
	const op = "assignment.SetPaused"

	err := s.repo.SetTelecallerPaused(ctx, managerID, telecallerID, paused)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("telecaller not found on this team").WithOp(op)
	case err != nil:
		s.log.DatabaseError("set telecaller paused", err)
		return apperr.Wrap(apperr.KindInternal, "could not update telecaller", err).WithOp(op)
	}

	s.log.Info("telecaller pause updated", "managerId", managerID, "telecallerId", telecallerID, "paused", paused)
	return nil
}

// Member returns telecallerID if it is an active member of the manager's team.
func (s *Service) Member(ctx context.Context, managerID, telecallerID uuid.UUID) (domain.Telecaller, error) {
	team, err := s.repo.ListTelecallers(ctx, managerID)
	if err != nil {
		return domain.Telecaller{}, apperr.Wrap(apperr.KindInternal, "could not load telecallers", err).WithOp("assignment.Member")
	}
	for _, t := range team {
		if t.ID == telecallerID {
			return t, nil
		}
	}
	return domain.Telecaller{}, apperr.Validation("telecaller is not an active member of this team").WithOp("assignment.Member")
}

// Distribute plans and applies assignments. Precondition failures are
// returned before any update is attempted; per-lead failures are in Result.
func (s *Service) Distribute(ctx context.Context, in DistributeInput) (Result, error) {
	const op = "assignment.Distribute"

	name := in.Policy
	if name == "" {
		name = s.defaultPolicy
	}
	policy, err := ParsePolicy(name)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindValidation, "unknown assignment policy: "+name, err).WithOp(op)
	}
	if len(in.LeadIDs) == 0 {
		return Result{}, apperr.Validation("select at least one lead").WithOp(op)
	}

	telecallers, err := s.resolveTelecallers(ctx, in)
	if err != nil {
		return Result{}, err
	}

	plan, err := Plan(in.LeadIDs, telecallers, policy)
	switch {
	case errors.Is(err, ErrPolicyNotSupported):
		return Result{}, apperr.Wrap(apperr.KindUnsupported, "assignment policy "+string(policy)+" is not supported yet", err).WithOp(op)
	case errors.Is(err, ErrNoTelecallers):
		return Result{}, apperr.Wrap(apperr.KindValidation, "no telecallers are available; select at least one", err).WithOp(op)
	case err != nil:
		return Result{}, apperr.Wrap(apperr.KindValidation, err.Error(), err).WithOp(op)
	}

	// A dispatched batch runs to completion even if the caller goes away.
	result := s.distributor.Apply(context.WithoutCancel(ctx), in.ManagerID, plan)

	metrics.RecordAssignments(len(result.Assigned), len(result.Failed))
	s.log.WithContext(ctx).DistributionSummary(in.ManagerID.String(), string(policy), len(result.Assigned), len(result.Failed))
	for _, f := range result.Failed {
		s.log.Warn("lead assignment failed", "leadId", f.LeadID, "telecallerId", f.TelecallerID, "error", f.Err)
	}
	s.publish(ctx, in, policy, result)

	return result, nil
}

func (s *Service) resolveTelecallers(ctx context.Context, in DistributeInput) ([]uuid.UUID, error) {
	const op = "assignment.Distribute"

	if len(in.TelecallerIDs) == 0 {
		team, selected, err := s.loadSession(ctx, in.ManagerID, in.CallerID)
		if err != nil {
			return nil, err
		}
		ordered := make([]uuid.UUID, 0, len(selected))
		for _, t := range team {
			if slices.Contains(selected, t.ID) {
				ordered = append(ordered, t.ID)
			}
		}
		return ordered, nil
	}

	team, err := s.repo.ListTelecallers(ctx, in.ManagerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not load telecallers", err).WithOp(op)
	}
	seen := make(map[uuid.UUID]struct{}, len(in.TelecallerIDs))
	ordered := make([]uuid.UUID, 0, len(in.TelecallerIDs))
	for _, id := range in.TelecallerIDs {
		if !slices.ContainsFunc(team, func(t domain.Telecaller) bool { return t.ID == id }) {
			return nil, apperr.Validation("telecaller " + id.String() + " is not an active member of this team").WithOp(op)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}
	return ordered, nil
}

// loadSession returns the active team and the caller's current selection,
// creating the default session when none exists. Selected ids that are no
// longer on the team are dropped.
func (s *Service) loadSession(ctx context.Context, managerID, callerID uuid.UUID) ([]domain.Telecaller, []uuid.UUID, error) {
	const op = "assignment.session"

	team, err := s.repo.ListTelecallers(ctx, managerID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInternal, "could not load telecallers", err).WithOp(op)
	}

	key := SessionKey(managerID, callerID)
	selected, found, err := s.sessions.Load(ctx, key)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindInternal, "could not load availability session", err).WithOp(op)
	}

	if !found {
		selected = make([]uuid.UUID, 0, len(team))
		for _, t := range team {
			selected = append(selected, t.ID)
		}
		if err := s.sessions.Save(ctx, key, selected); err != nil {
			return nil, nil, apperr.Wrap(apperr.KindInternal, "could not save availability session", err).WithOp(op)
		}
		return team, selected, nil
	}

	selected = slices.DeleteFunc(selected, func(id uuid.UUID) bool {
		return !slices.ContainsFunc(team, func(t domain.Telecaller) bool { return t.ID == id })
	})
	return team, selected, nil
}

func (s *Service) publish(ctx context.Context, in DistributeInput, policy Policy, result Result) {
	if s.bus == nil || len(result.Assigned) == 0 {
		return
	}
	applied := make([]events.LeadAssignment, 0, len(result.Assigned))
	for _, a := range result.Assigned {
		applied = append(applied, events.LeadAssignment{LeadID: a.LeadID, TelecallerID: a.TelecallerID})
	}
	s.bus.Publish(ctx, events.LeadsDistributed{
		BaseEvent:   events.NewBaseEvent(),
		ManagerID:   in.ManagerID,
		ActorID:     in.CallerID,
		Policy:      string(policy),
		Assignments: applied,
		Failed:      len(result.Failed),
	})
}

func candidates(team []domain.Telecaller, selected []uuid.UUID) []Candidate {
	out := make([]Candidate, 0, len(team))
	for _, t := range team {
		out = append(out, Candidate{Telecaller: t, Selected: slices.Contains(selected, t.ID)})
	}
	return out
}
