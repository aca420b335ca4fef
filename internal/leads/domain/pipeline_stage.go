package domain

const (
	StatusNew          = "New"
	StatusNotConnected = "Not_Connected"
	StatusContacted    = "Contacted"
	StatusPurposed     = "Purposed"
	StatusDiscuss      = "Discuss"
	StatusInterested   = "Interested"
	StatusVisitSoon    = "Visit_Soon"
	StatusVisited      = "Visited"
	StatusNegotiation  = "Negotiation"
	StatusClosedWon    = "Closed Won"
	StatusClosedLost   = "Closed Lost"

	// StatusDuplicate marks a quarantined DuplicateRecord. It is never a
	// pipeline stage of a live lead.
	StatusDuplicate = "Duplicate"
)

// DefaultStages is the enumerated pipeline in display order.
var DefaultStages = []string{
	StatusNew,
	StatusNotConnected,
	StatusContacted,
	StatusPurposed,
	StatusDiscuss,
	StatusInterested,
	StatusVisitSoon,
	StatusVisited,
	StatusNegotiation,
	StatusClosedWon,
	StatusClosedLost,
}

// Stages with no follow-up obligation.
var noFollowUpStages = map[string]struct{}{
	NormalizeStatus(StatusNew):        {},
	NormalizeStatus(StatusClosedWon):  {},
	NormalizeStatus(StatusClosedLost): {},
}

// IsPending reports whether status is the untouched "new" stage.
func IsPending(status string) bool {
	return NormalizeStatus(status) == NormalizeStatus(StatusNew)
}

// NeedsFollowUp reports whether a lead in status can be overdue for follow-up.
func NeedsFollowUp(status string) bool {
	_, skip := noFollowUpStages[NormalizeStatus(status)]
	return !skip
}

// SameStage compares two statuses the way the dashboard does.
func SameStage(a, b string) bool {
	return NormalizeStatus(a) == NormalizeStatus(b)
}
