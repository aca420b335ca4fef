// Package intake classifies incoming raw records against a manager's existing
// leads and writes the result through the persistence gateway.
package intake

import (
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Options carries the values Deduplicate stamps onto new records.
type Options struct {
	ManagerID uuid.UUID
	Now       time.Time
	NewID     func() uuid.UUID
	// Notes is stored on every lead and duplicate the batch produces.
	Notes *string
}

// Outcome is the classification of one batch. Every input record lands in
// exactly one of Fresh, Duplicates, BatchSkipped or Rejected.
type Outcome struct {
	Fresh        []domain.Lead
	Duplicates   []domain.DuplicateRecord
	BatchSkipped int
	Rejected     int
}

// Deduplicate classifies batch against the existing snapshot.
//
// Records without a phone are rejected. Of records sharing a phone+email
// batch key only the first is considered. A considered record that matches a
// known lead on phone (checked first) or email becomes a DuplicateRecord
// attributed to that lead; otherwise it becomes a Fresh lead and is itself
// known to the rest of the batch.
func Deduplicate(batch []domain.RawRecord, existing []domain.ExistingLead, opts Options) Outcome {
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}

	known := newLookup(existing)
	seen := make(map[string]struct{}, len(batch))
	var out Outcome

	for _, raw := range batch {
		fixed, custom := domain.SplitFields(raw)
		if !fixed.HasPhone {
			out.Rejected++
			continue
		}

		key := batchKey(fixed)
		if _, dup := seen[key]; dup {
			out.BatchSkipped++
			continue
		}
		seen[key] = struct{}{}

		if original, ok := known.match(fixed); ok {
			out.Duplicates = append(out.Duplicates, quarantine(fixed, custom, original, opts))
			continue
		}

		lead := domain.Lead{
			ID:             opts.NewID(),
			ManagerID:      opts.ManagerID,
			AssignedTo:     fixed.AssignedTo,
			Name:           fixed.Name,
			Phone:          fixed.Phone,
			Email:          fixed.Email,
			City:           fixed.City,
			State:          fixed.State,
			Source:         fixed.Source,
			Status:         fixed.Status,
			Notes:          opts.Notes,
			CustomFields:   custom,
			TimesGenerated: 1,
			CreatedAt:      opts.Now,
		}
		out.Fresh = append(out.Fresh, lead)
		known.add(domain.ExistingLead{
			ID:             lead.ID,
			ManagerID:      lead.ManagerID,
			AssignedTo:     lead.AssignedTo,
			Phone:          lead.Phone,
			Email:          derefString(lead.Email),
			Status:         lead.Status,
			TimesGenerated: lead.TimesGenerated,
		})
	}

	return out
}

func batchKey(fixed domain.FixedFields) string {
	return fixed.Phone + "_" + derefString(fixed.Email)
}

func quarantine(fixed domain.FixedFields, custom domain.CustomFields, original domain.ExistingLead, opts Options) domain.DuplicateRecord {
	return domain.DuplicateRecord{
		ID:              opts.NewID(),
		ManagerID:       opts.ManagerID,
		AssignedTo:      original.AssignedTo,
		OriginalLeadID:  original.ID,
		OriginalOwnerID: original.AssignedTo,
		OriginalStatus:  original.Status,
		Reason:          domain.DuplicateReason,
		Name:            fixed.Name,
		Phone:           fixed.Phone,
		Email:           fixed.Email,
		City:            fixed.City,
		State:           fixed.State,
		Source:          fixed.Source,
		Status:          domain.StatusDuplicate,
		Notes:           opts.Notes,
		CustomFields:    custom,
		CreatedAt:       opts.Now,
	}
}

// lookup indexes known leads by canonical phone and email. The first lead
// indexed under a key keeps it.
type lookup struct {
	byPhone map[string]domain.ExistingLead
	byEmail map[string]domain.ExistingLead
}

func newLookup(existing []domain.ExistingLead) *lookup {
	l := &lookup{
		byPhone: make(map[string]domain.ExistingLead, len(existing)),
		byEmail: make(map[string]domain.ExistingLead, len(existing)),
	}
	for _, lead := range existing {
		l.add(lead)
	}
	return l
}

func (l *lookup) add(lead domain.ExistingLead) {
	if phone, ok := domain.NormalizePhone(lead.Phone); ok {
		if _, taken := l.byPhone[phone]; !taken {
			l.byPhone[phone] = lead
		}
	}
	if email, ok := domain.NormalizeEmail(lead.Email); ok {
		if _, taken := l.byEmail[email]; !taken {
			l.byEmail[email] = lead
		}
	}
}

func (l *lookup) match(fixed domain.FixedFields) (domain.ExistingLead, bool) {
	if lead, ok := l.byPhone[fixed.Phone]; ok {
		return lead, true
	}
	if fixed.Email != nil {
		if lead, ok := l.byEmail[*fixed.Email]; ok {
			return lead, true
		}
	}
	return domain.ExistingLead{}, false
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
