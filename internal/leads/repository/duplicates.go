package repository

import (
	"context"
	"errors"
	"fmt"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const duplicateColumns = `id, manager_id, assigned_to, original_lead_id, original_owner_id, original_status,
	reason, name, phone, email, city, state, source, status, notes, custom_fields, created_at`

// InsertDuplicates quarantines records and bumps times_generated on each
// original they collided with, in one transaction.
func (r *Repository) InsertDuplicates(ctx context.Context, duplicates []domain.DuplicateRecord) error {
	if len(duplicates) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, dup := range duplicates {
		custom, err := encodeCustomFields(dup.CustomFields)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO duplicates (`+duplicateColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`, dup.ID, dup.ManagerID, dup.AssignedTo, dup.OriginalLeadID, dup.OriginalOwnerID, dup.OriginalStatus,
			dup.Reason, dup.Name, dup.Phone, dup.Email, dup.City, dup.State, dup.Source, dup.Status,
			dup.Notes, custom, dup.CreatedAt)
		batch.Queue(`
			UPDATE leads SET times_generated = times_generated + 1
			WHERE id = $1 AND manager_id = $2
		`, dup.OriginalLeadID, dup.ManagerID)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to quarantine duplicate: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListDuplicates returns the manager's quarantine, grouped rows adjacent by
// phone and oldest first within a phone.
func (r *Repository) ListDuplicates(ctx context.Context, managerID uuid.UUID) ([]domain.DuplicateRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+duplicateColumns+`
		FROM duplicates
		WHERE manager_id = $1
		ORDER BY phone ASC, created_at ASC
	`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.DuplicateRecord, 0)
	for rows.Next() {
		item, err := scanDuplicate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// GetDuplicate loads one quarantined record of the manager's scope.
func (r *Repository) GetDuplicate(ctx context.Context, managerID, duplicateID uuid.UUID) (domain.DuplicateRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+duplicateColumns+`
		FROM duplicates
		WHERE id = $1 AND manager_id = $2
	`, duplicateID, managerID)

	item, err := scanDuplicate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DuplicateRecord{}, ErrNotFound
	}
	return item, err
}

// DeleteDuplicate removes one quarantined record of the manager's scope.
func (r *Repository) DeleteDuplicate(ctx context.Context, managerID, duplicateID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM duplicates WHERE id = $1 AND manager_id = $2`, duplicateID, managerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountDuplicates is the size of the manager's quarantine.
func (r *Repository) CountDuplicates(ctx context.Context, managerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM duplicates WHERE manager_id = $1`, managerID).Scan(&count)
	return count, err
}

func scanDuplicate(row pgx.Row) (domain.DuplicateRecord, error) {
	var (
		item           domain.DuplicateRecord
		originalLead   *uuid.UUID
		originalStatus *string
		custom         []byte
	)
	if err := row.Scan(
		&item.ID,
		&item.ManagerID,
		&item.AssignedTo,
		&originalLead,
		&item.OriginalOwnerID,
		&originalStatus,
		&item.Reason,
		&item.Name,
		&item.Phone,
		&item.Email,
		&item.City,
		&item.State,
		&item.Source,
		&item.Status,
		&item.Notes,
		&custom,
		&item.CreatedAt,
	); err != nil {
		return domain.DuplicateRecord{}, err
	}

	// original_lead_id is nulled when the original lead is deleted.
	if originalLead != nil {
		item.OriginalLeadID = *originalLead
	}
	if originalStatus != nil {
		item.OriginalStatus = *originalStatus
	}

	var err error
	if item.CustomFields, err = decodeCustomFields(custom); err != nil {
		return domain.DuplicateRecord{}, err
	}
	return item, nil
}
