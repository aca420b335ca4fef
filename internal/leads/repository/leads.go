package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PoolFilter narrows the unassigned pool. Nil fields match everything.
type PoolFilter struct {
	City   *string
	Source *string
	Status *string
}

// FilterOptions are the distinct values present in a manager's pool.
type FilterOptions struct {
	Cities   []string
	Sources  []string
	Statuses []string
}

const leadColumns = `id, manager_id, assigned_to, name, phone, email, city, state, source, status,
	notes, follow_up_date, custom_fields, times_generated, created_at`

// FetchExistingLeads returns the collision snapshot of a manager scope,
// oldest first so the first stored lead owns a shared phone or email.
func (r *Repository) FetchExistingLeads(ctx context.Context, managerID uuid.UUID) ([]domain.ExistingLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, manager_id, assigned_to, phone, COALESCE(email, ''), status, times_generated
		FROM leads
		WHERE manager_id = $1
		ORDER BY created_at ASC, id ASC
	`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ExistingLead, 0)
	for rows.Next() {
		var item domain.ExistingLead
		if err := rows.Scan(
			&item.ID,
			&item.ManagerID,
			&item.AssignedTo,
			&item.Phone,
			&item.Email,
			&item.Status,
			&item.TimesGenerated,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// InsertLeads writes leads in one round-trip. managerID overrides whatever
// scope the leads carry.
func (r *Repository) InsertLeads(ctx context.Context, managerID uuid.UUID, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, lead := range leads {
		lead.ManagerID = managerID
		if err := queueLeadInsert(batch, lead); err != nil {
			return err
		}
	}

	results := tx.SendBatch(ctx, batch)
	for range leads {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert lead: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// InsertLead writes a single lead.
func (r *Repository) InsertLead(ctx context.Context, lead domain.Lead) error {
	custom, err := encodeCustomFields(lead.CustomFields)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertLeadSQL, leadInsertArgs(lead, custom)...)
	return err
}

const insertLeadSQL = `
	INSERT INTO leads (` + leadColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

func queueLeadInsert(batch *pgx.Batch, lead domain.Lead) error {
	custom, err := encodeCustomFields(lead.CustomFields)
	if err != nil {
		return err
	}
	batch.Queue(insertLeadSQL, leadInsertArgs(lead, custom)...)
	return nil
}

func leadInsertArgs(lead domain.Lead, custom []byte) []any {
	return []any{
		lead.ID, lead.ManagerID, lead.AssignedTo, lead.Name, lead.Phone, lead.Email,
		lead.City, lead.State, lead.Source, lead.Status, lead.Notes, lead.FollowUpDate,
		custom, lead.TimesGenerated, lead.CreatedAt,
	}
}

// ListLeads returns the manager's leads, newest first. A non-nil assignedTo
// restricts the list to that telecaller.
func (r *Repository) ListLeads(ctx context.Context, managerID uuid.UUID, assignedTo *uuid.UUID) ([]domain.Lead, error) {
	return r.queryLeads(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE manager_id = $1 AND ($2::uuid IS NULL OR assigned_to = $2)
		ORDER BY created_at DESC
	`, managerID, assignedTo)
}

// ListUnassigned returns the manager's pool, newest first.
func (r *Repository) ListUnassigned(ctx context.Context, managerID uuid.UUID, filter PoolFilter) ([]domain.Lead, error) {
	query, args := unassignedQuery(managerID, filter)
	return r.queryLeads(ctx, query, args...)
}

func unassignedQuery(managerID uuid.UUID, filter PoolFilter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT ` + leadColumns + ` FROM leads WHERE manager_id = $1 AND assigned_to IS NULL`)
	args := []any{managerID}

	add := func(column string, value *string) {
		if value == nil || strings.TrimSpace(*value) == "" {
			return
		}
		args = append(args, strings.TrimSpace(*value))
		fmt.Fprintf(&b, " AND lower(%s) = lower($%d)", column, len(args))
	}
	add("city", filter.City)
	add("source", filter.Source)
	add("status", filter.Status)

	b.WriteString(" ORDER BY created_at DESC")
	return b.String(), args
}

func (r *Repository) queryLeads(ctx context.Context, query string, args ...any) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		var (
			item   domain.Lead
			custom []byte
		)
		if err := rows.Scan(
			&item.ID,
			&item.ManagerID,
			&item.AssignedTo,
			&item.Name,
			&item.Phone,
			&item.Email,
			&item.City,
			&item.State,
			&item.Source,
			&item.Status,
			&item.Notes,
			&item.FollowUpDate,
			&custom,
			&item.TimesGenerated,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		if item.CustomFields, err = decodeCustomFields(custom); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// PoolFilterOptions lists the distinct non-empty city, source and status
// values among the manager's unassigned leads.
func (r *Repository) PoolFilterOptions(ctx context.Context, managerID uuid.UUID) (FilterOptions, error) {
	var opts FilterOptions
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(array_agg(DISTINCT city) FILTER (WHERE city IS NOT NULL AND city <> ''), '{}'),
			COALESCE(array_agg(DISTINCT source) FILTER (WHERE source <> ''), '{}'),
			COALESCE(array_agg(DISTINCT status) FILTER (WHERE status <> ''), '{}')
		FROM leads
		WHERE manager_id = $1 AND assigned_to IS NULL
	`, managerID).Scan(&opts.Cities, &opts.Sources, &opts.Statuses)
	return opts, err
}

// UpdateLeadAssignment points one lead of the manager's scope at a
// telecaller. No prior assignment is checked.
func (r *Repository) UpdateLeadAssignment(ctx context.Context, managerID, leadID, telecallerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET assigned_to = $3
		WHERE id = $2 AND manager_id = $1
	`, managerID, leadID, telecallerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLeadSummaries returns the dashboard read model. A non-nil assignedTo
// restricts it to that telecaller.
func (r *Repository) ListLeadSummaries(ctx context.Context, managerID uuid.UUID, assignedTo *uuid.UUID) ([]domain.LeadSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, assigned_to, phone, status, created_at, follow_up_date
		FROM leads
		WHERE manager_id = $1 AND ($2::uuid IS NULL OR assigned_to = $2)
	`, managerID, assignedTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.LeadSummary, 0)
	for rows.Next() {
		var item domain.LeadSummary
		var created time.Time
		if err := rows.Scan(&item.ID, &item.AssignedTo, &item.Phone, &item.Status, &created, &item.FollowUpDate); err != nil {
			return nil, err
		}
		item.CreatedAt = formatCreatedAt(created)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// CountLeadsByTelecaller returns how many leads each telecaller holds.
func (r *Repository) CountLeadsByTelecaller(ctx context.Context, managerID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT assigned_to, COUNT(*)
		FROM leads
		WHERE manager_id = $1 AND assigned_to IS NOT NULL
		GROUP BY assigned_to
	`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id    uuid.UUID
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return counts, nil
}
