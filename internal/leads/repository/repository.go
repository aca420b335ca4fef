// Package repository is the PostgreSQL persistence of the leads context.
package repository

import (
	"encoding/json"
	"errors"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// encodeCustomFields stores an empty map as SQL NULL.
func encodeCustomFields(fields domain.CustomFields) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	return json.Marshal(fields)
}

func decodeCustomFields(raw []byte) (domain.CustomFields, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	fields := make(domain.CustomFields, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case nil:
			fields[key] = ""
		default:
			encoded, _ := json.Marshal(v)
			fields[key] = string(encoded)
		}
	}
	return fields, nil
}

// formatCreatedAt renders a stored timestamp the way the "today" prefix
// match expects it.
func formatCreatedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
