package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Fixed field keys. Every other key of a raw record is a custom field.
const (
	KeyName           = "name"
	KeyPhone          = "phone"
	KeyEmail          = "email"
	KeyCity           = "city"
	KeyState          = "state"
	KeySource         = "source"
	KeyStatus         = "status"
	KeyManagerID      = "manager_id"
	KeyAssignedTo     = "assigned_to"
	KeyCreatedAt      = "created_at"
	KeyTimesGenerated = "times_generated"
	KeyID             = "id"
)

// DefaultName and DefaultSource fill blank fields.
const (
	DefaultName   = "Unknown"
	DefaultSource = "Unknown"
)

var fixedKeys = map[string]struct{}{
	KeyName:           {},
	KeyPhone:          {},
	KeyEmail:          {},
	KeyCity:           {},
	KeyState:          {},
	KeySource:         {},
	KeyStatus:         {},
	KeyManagerID:      {},
	KeyAssignedTo:     {},
	KeyCreatedAt:      {},
	KeyTimesGenerated: {},
	KeyID:             {},
}

// RawRecord is one uploaded spreadsheet row or one manual form submission.
type RawRecord map[string]string

// CustomFields carries non-fixed keys verbatim. nil and empty mean the same.
type CustomFields map[string]string

// FixedFields is the normalized, defaulted view of a raw record's fixed keys.
// HasPhone is false when the phone normalizes to nothing.
type FixedFields struct {
	Name       string
	Phone      string
	HasPhone   bool
	Email      *string
	City       *string
	State      *string
	Source     string
	Status     string
	AssignedTo *uuid.UUID
}

// IsFixedKey reports whether key belongs to the fixed field set.
// Matching ignores case and surrounding spaces, as spreadsheet headers vary.
func IsFixedKey(key string) bool {
	_, ok := fixedKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// SplitFields separates raw into normalized fixed fields and custom fields.
// Keys manager_id, created_at, times_generated and id are recognised as
// fixed and dropped: the pipeline owns those values.
func SplitFields(raw RawRecord) (FixedFields, CustomFields) {
	values := make(map[string]string, len(fixedKeys))
	var custom CustomFields

	for key, value := range raw {
		canonical := strings.ToLower(strings.TrimSpace(key))
		if _, fixed := fixedKeys[canonical]; fixed {
			values[canonical] = value
			continue
		}
		if custom == nil {
			custom = make(CustomFields)
		}
		custom[key] = value
	}

	fields := FixedFields{
		Name:   orDefault(values[KeyName], DefaultName),
		Source: orDefault(values[KeySource], DefaultSource),
		Status: orDefault(values[KeyStatus], StatusNew),
		City:   optional(values[KeyCity]),
		State:  optional(values[KeyState]),
	}
	fields.Phone, fields.HasPhone = NormalizePhone(values[KeyPhone])
	if email, ok := NormalizeEmail(values[KeyEmail]); ok {
		fields.Email = &email
	}
	if id, err := uuid.Parse(strings.TrimSpace(values[KeyAssignedTo])); err == nil && id != uuid.Nil {
		fields.AssignedTo = &id
	}

	return fields, custom
}

// Len returns the number of custom fields.
func (c CustomFields) Len() int {
	return len(c)
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
