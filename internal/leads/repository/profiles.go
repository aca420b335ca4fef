package repository

import (
	"context"
	"encoding/json"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ListTelecallers returns the manager's active (non-paused) telecallers
// ordered by name.
func (r *Repository) ListTelecallers(ctx context.Context, managerID uuid.UUID) ([]domain.Telecaller, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, manager_id, full_name, is_paused
		FROM profiles
		WHERE manager_id = $1 AND role = 'telecaller' AND is_paused = false
		ORDER BY full_name ASC, id ASC
	`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Telecaller, 0)
	for rows.Next() {
		var item domain.Telecaller
		if err := rows.Scan(&item.ID, &item.ManagerID, &item.FullName, &item.IsPaused); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// SetTelecallerPaused sets the persistent paused flag on one of the
// manager's telecallers. Paused telecallers drop out of ListTelecallers.
func (r *Repository) SetTelecallerPaused(ctx context.Context, managerID, telecallerID uuid.UUID, paused bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET is_paused = $3
		WHERE id = $1 AND manager_id = $2 AND role = 'telecaller'
	`, telecallerID, managerID, paused)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddActivity appends to a lead's audit trail.
func (r *Repository) AddActivity(ctx context.Context, leadID uuid.UUID, actorID uuid.UUID, action string, meta map[string]any) error {
	var metaJSON []byte
	if meta != nil {
		encoded, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		metaJSON = encoded
	}

	var actor *uuid.UUID
	if actorID != uuid.Nil {
		actor = &actorID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activity (id, lead_id, actor_id, action, meta)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), leadID, actor, action, metaJSON)
	return err
}
