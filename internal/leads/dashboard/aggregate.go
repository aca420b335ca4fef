// Package dashboard computes summary counts over a manager's or a
// telecaller's leads.
package dashboard

import (
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"
)

// StageCount is the number of leads in one pipeline stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// Stats are the counts derived from one lead snapshot.
type Stats struct {
	Total           int
	Today           int
	Pending         int
	PendingFollowUp int
	ByStage         []StageCount
	// RepeatedPhones counts leads whose canonical phone already appeared
	// earlier in the snapshot. It is independent of the quarantined
	// duplicate collection and the two may disagree.
	RepeatedPhones int
}

// Aggregate counts over leads. today is a "YYYY-MM-DD" date string matched
// as a prefix of each lead's stored creation timestamp text; now is the
// instant follow-up dates are compared against. stages lists the stages to
// report, in order; nil means domain.DefaultStages.
func Aggregate(leads []domain.LeadSummary, today string, now time.Time, stages []string) Stats {
	if len(stages) == 0 {
		stages = domain.DefaultStages
	}

	stats := Stats{Total: len(leads)}
	byStage := make(map[string]int, len(stages))
	phones := make(map[string]struct{}, len(leads))

	for _, lead := range leads {
		if today != "" && strings.HasPrefix(lead.CreatedAt, today) {
			stats.Today++
		}

		status := domain.NormalizeStatus(lead.Status)
		byStage[status]++

		if domain.IsPending(lead.Status) {
			stats.Pending++
		}
		if domain.NeedsFollowUp(lead.Status) && lead.FollowUpDate != nil && lead.FollowUpDate.Before(now) {
			stats.PendingFollowUp++
		}

		if phone, ok := domain.NormalizePhone(lead.Phone); ok {
			if _, seen := phones[phone]; seen {
				stats.RepeatedPhones++
			} else {
				phones[phone] = struct{}{}
			}
		}
	}

	stats.ByStage = make([]StageCount, 0, len(stages))
	for _, stage := range stages {
		stats.ByStage = append(stats.ByStage, StageCount{
			Stage: stage,
			Count: byStage[domain.NormalizeStatus(stage)],
		})
	}

	return stats
}
