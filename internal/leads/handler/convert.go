package handler

import (
	"leadflow_backend/internal/leads/assignment"
	"leadflow_backend/internal/leads/dashboard"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/intake"
	"leadflow_backend/internal/leads/review"
	"leadflow_backend/internal/leads/transport"

	"github.com/google/uuid"
)

func toLeadResponse(lead domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             lead.ID,
		AssignedTo:     lead.AssignedTo,
		Name:           lead.Name,
		Phone:          lead.Phone,
		Email:          lead.Email,
		City:           lead.City,
		State:          lead.State,
		Source:         lead.Source,
		Status:         lead.Status,
		Notes:          lead.Notes,
		FollowUpDate:   lead.FollowUpDate,
		CustomFields:   lead.CustomFields,
		TimesGenerated: lead.TimesGenerated,
		CreatedAt:      lead.CreatedAt,
	}
}

func toLeadResponses(leads []domain.Lead) []transport.LeadResponse {
	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}
	return items
}

func toImportResponse(report intake.Report) transport.ImportResponse {
	resp := transport.ImportResponse{
		Inserted:     report.Inserted,
		Quarantined:  report.Quarantined,
		Orphaned:     report.Orphaned,
		BatchSkipped: report.BatchSkipped,
		Rejected:     report.Rejected,
	}
	if report.FreshErr != nil {
		resp.LeadsError = "new leads could not be saved"
	}
	if report.DuplicateErr != nil {
		resp.DuplicatesError = "duplicates could not be saved"
	}
	return resp
}

// toDashboardResponse omits the quarantine count and team load for a
// telecaller, who sees only their own leads.
func toDashboardResponse(summary dashboard.Summary, manager bool) transport.DashboardResponse {
	resp := transport.DashboardResponse{
		Total:           summary.Total,
		Today:           summary.Today,
		Pending:         summary.Pending,
		PendingFollowUp: summary.PendingFollowUp,
		RepeatedPhones:  summary.RepeatedPhones,
		ByStage:         make([]transport.StageCountResponse, 0, len(summary.ByStage)),
	}
	for _, sc := range summary.ByStage {
		resp.ByStage = append(resp.ByStage, transport.StageCountResponse{Stage: sc.Stage, Count: sc.Count})
	}
	if !manager {
		return resp
	}

	quarantined := summary.QuarantinedDuplicates
	resp.QuarantinedDuplicates = &quarantined
	resp.TeamLoad = make([]transport.TeamLoadResponse, 0, len(summary.TeamLoad))
	for id, count := range summary.TeamLoad {
		resp.TeamLoad = append(resp.TeamLoad, transport.TeamLoadResponse{TelecallerID: id, Leads: count})
	}
	return resp
}

func toAvailabilityResponse(list []assignment.Candidate) transport.AvailabilityResponse {
	resp := transport.AvailabilityResponse{Telecallers: make([]transport.CandidateResponse, 0, len(list))}
	for _, candidate := range list {
		resp.Telecallers = append(resp.Telecallers, transport.CandidateResponse{
			TelecallerID: candidate.Telecaller.ID,
			FullName:     candidate.Telecaller.FullName,
			Selected:     candidate.Selected,
		})
	}
	return resp
}

func toDistributeResponse(result assignment.Result) transport.DistributeResponse {
	resp := transport.DistributeResponse{
		Assigned: make([]transport.AssignmentResponse, 0, len(result.Assigned)),
		Failed:   make([]transport.FailedAssignmentResponse, 0, len(result.Failed)),
	}
	for _, a := range result.Assigned {
		resp.Assigned = append(resp.Assigned, transport.AssignmentResponse{LeadID: a.LeadID, TelecallerID: a.TelecallerID})
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, transport.FailedAssignmentResponse{
			LeadID:       f.LeadID,
			TelecallerID: f.TelecallerID,
			Error:        f.Err.Error(),
		})
	}
	return resp
}

func toDuplicateGroups(groups []review.Group) []transport.DuplicateGroupResponse {
	out := make([]transport.DuplicateGroupResponse, 0, len(groups))
	for _, group := range groups {
		records := make([]transport.DuplicateResponse, 0, len(group.Records))
		for _, d := range group.Records {
			records = append(records, transport.DuplicateResponse{
				ID:              d.ID,
				OriginalLeadID:  optionalUUID(d.OriginalLeadID),
				OriginalOwnerID: d.OriginalOwnerID,
				OriginalStatus:  d.OriginalStatus,
				Reason:          d.Reason,
				Name:            d.Name,
				Phone:           d.Phone,
				Email:           d.Email,
				City:            d.City,
				State:           d.State,
				Source:          d.Source,
				Status:          d.Status,
				Notes:           d.Notes,
				CustomFields:    d.CustomFields,
				CreatedAt:       d.CreatedAt,
			})
		}
		out = append(out, transport.DuplicateGroupResponse{Phone: group.Phone, Records: records})
	}
	return out
}

func optionalUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
