// Package assignment distributes pool leads across a manager's telecallers.
package assignment

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Policy names a distribution strategy.
type Policy string

const (
	PolicyRoundRobin     Policy = "round_robin"
	PolicyByAvailability Policy = "by_availability"
)

var (
	// ErrNoTelecallers rejects a run with an empty telecaller list.
	ErrNoTelecallers = errors.New("no telecallers available for assignment")
	// ErrPolicyNotSupported rejects a recognised policy that has no implementation.
	ErrPolicyNotSupported = errors.New("assignment policy not supported")
	// ErrUnknownPolicy rejects a policy name that is not recognised at all.
	ErrUnknownPolicy = errors.New("unknown assignment policy")
)

// ParsePolicy accepts canonical names and display forms such as "Round-Robin".
func ParsePolicy(name string) (Policy, error) {
	canonical := strings.ToLower(strings.TrimSpace(name))
	canonical = strings.NewReplacer("-", "_", " ", "_").Replace(canonical)

	switch Policy(canonical) {
	case PolicyRoundRobin:
		return PolicyRoundRobin, nil
	case PolicyByAvailability:
		return PolicyByAvailability, nil
	default:
		return "", ErrUnknownPolicy
	}
}

// Assignment pairs one lead with the telecaller it goes to.
type Assignment struct {
	LeadID       uuid.UUID
	TelecallerID uuid.UUID
}

// Plan maps leads to telecallers without touching storage. Lead i of the
// ordered list goes to telecaller i mod N under round robin.
func Plan(leadIDs, telecallerIDs []uuid.UUID, policy Policy) ([]Assignment, error) {
	switch policy {
	case PolicyRoundRobin:
	case PolicyByAvailability:
		return nil, ErrPolicyNotSupported
	default:
		return nil, ErrUnknownPolicy
	}

	if len(telecallerIDs) == 0 {
		return nil, ErrNoTelecallers
	}

	plan := make([]Assignment, len(leadIDs))
	for i, leadID := range leadIDs {
		plan[i] = Assignment{
			LeadID:       leadID,
			TelecallerID: telecallerIDs[i%len(telecallerIDs)],
		}
	}
	return plan, nil
}
