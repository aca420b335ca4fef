package assignment

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Updater writes a single lead's assignment.
type Updater interface {
	UpdateLeadAssignment(ctx context.Context, managerID, leadID, telecallerID uuid.UUID) error
}

// Failure is a per-lead update that did not apply.
type Failure struct {
	Assignment
	Err error
}

// Result holds the outcome of every planned update, in plan order.
type Result struct {
	Assigned []Assignment
	Failed   []Failure
}

// Distributor applies a plan as independent per-lead updates.
type Distributor struct {
	updater     Updater
	concurrency int
}

// NewDistributor creates a distributor running at most concurrency updates
// at once. Non-positive values mean one update per lead in flight.
func NewDistributor(updater Updater, concurrency int) *Distributor {
	return &Distributor{updater: updater, concurrency: concurrency}
}

// Apply runs every update of plan and waits for all of them. One failing
// update never stops its siblings.
func (d *Distributor) Apply(ctx context.Context, managerID uuid.UUID, plan []Assignment) Result {
	errs := make([]error, len(plan))

	// Siblings must not be cancelled by a failure, so every goroutine returns nil.
	var g errgroup.Group
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for i, a := range plan {
		i, a := i, a
		g.Go(func() error {
			errs[i] = d.updater.UpdateLeadAssignment(ctx, managerID, a.LeadID, a.TelecallerID)
			return nil
		})
	}
	_ = g.Wait()

	var result Result
	for i, a := range plan {
		if errs[i] != nil {
			result.Failed = append(result.Failed, Failure{Assignment: a, Err: errs[i]})
			continue
		}
		result.Assigned = append(result.Assigned, a)
	}
	return result
}
