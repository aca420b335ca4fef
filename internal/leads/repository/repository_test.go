package repository

import (
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFieldsEncoding(t *testing.T) {
	raw, err := encodeCustomFields(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = encodeCustomFields(domain.CustomFields{"budget": "10L"})
	require.NoError(t, err)

	fields, err := decodeCustomFields(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.CustomFields{"budget": "10L"}, fields)
}

func TestDecodeCustomFieldsStringifiesNonStrings(t *testing.T) {
	fields, err := decodeCustomFields([]byte(`{"rooms": 3, "garden": true, "note": null}`))

	require.NoError(t, err)
	assert.Equal(t, domain.CustomFields{"rooms": "3", "garden": "true", "note": ""}, fields)

	fields, err = decodeCustomFields([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestFormatCreatedAtIsUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	created := time.Date(2024, 5, 2, 5, 29, 59, 0, ist)

	assert.Equal(t, "2024-05-01T23:59:59Z", formatCreatedAt(created))
}

func TestUnassignedQueryAddsOnlySetFilters(t *testing.T) {
	manager := uuid.New()
	city, blank, status := "Pune", "  ", "New"

	query, args := unassignedQuery(manager, PoolFilter{City: &city, Source: &blank, Status: &status})

	assert.Contains(t, query, "lower(city) = lower($2)")
	assert.Contains(t, query, "lower(status) = lower($3)")
	assert.NotContains(t, query, "lower(source)")
	assert.Equal(t, []any{manager, "Pune", "New"}, args)

	query, args = unassignedQuery(manager, PoolFilter{})
	assert.NotContains(t, query, "lower(")
	assert.Len(t, args, 1)
}
