package transport

import (
	"bytes"
	"encoding/json"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/sanitize"
)

// Cell is one spreadsheet cell as text. Numbers and booleans keep their
// literal JSON text, so a phone sent as 9876543210 is not rewritten in
// exponent form. null becomes "".
type Cell string

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cell(s)
	default:
		*c = Cell(data)
	}
	return nil
}

// Row is one spreadsheet row.
type Row map[string]Cell

// Records converts the request rows for the ingest pipeline.
func (r ImportRequest) Records() []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make(domain.RawRecord, len(row))
		for key, cell := range row {
			record[key] = string(cell)
		}
		records = append(records, record)
	}
	return records
}

// Record converts the manual form into a raw record with markup stripped
// from the typed text. Notes travel separately, see NotesText. assignedTo
// is the owner the caller is allowed to set.
func (r CreateLeadRequest) Record(assignedTo string) domain.RawRecord {
	record := make(domain.RawRecord, len(r.CustomFields)+8)
	for key, value := range r.CustomFields {
		if domain.IsFixedKey(key) {
			continue
		}
		record[key] = value
	}
	record[domain.KeyName] = r.Name
	record[domain.KeySource] = r.Source
	record[domain.KeyEmail] = r.Email
	record[domain.KeyCity] = r.City
	record[domain.KeyState] = r.State
	sanitize.Fields(record)

	record[domain.KeyPhone] = r.Phone
	record[domain.KeyStatus] = domain.StatusNew
	if assignedTo != "" {
		record[domain.KeyAssignedTo] = assignedTo
	}
	return record
}

// NotesText is the form's notes with markup stripped.
func (r CreateLeadRequest) NotesText() string {
	return sanitize.Text(r.Notes)
}
