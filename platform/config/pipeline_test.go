package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePipelineFileOverlaysConfig(t *testing.T) {
	body := []byte(`
stages:
  - New
  - " Contacted "
  - ""
  - Closed Won
assignment:
  default_policy: by_availability
  concurrency: 3
`)

	file, err := ParsePipelineFile(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"New", "Contacted", "Closed Won"}, file.Stages)

	cfg := &Config{DefaultPolicy: "round_robin", AssignmentConcurrency: 16}
	file.Apply(cfg)

	assert.Equal(t, []string{"New", "Contacted", "Closed Won"}, cfg.GetPipelineStages())
	assert.Equal(t, "by_availability", cfg.GetDefaultAssignmentPolicy())
	assert.Equal(t, 3, cfg.GetAssignmentConcurrency())
}

func TestParsePipelineFileKeepsDefaultsForEmptyValues(t *testing.T) {
	file, err := ParsePipelineFile([]byte("stages: []\n"))
	require.NoError(t, err)

	cfg := &Config{DefaultPolicy: "round_robin", AssignmentConcurrency: 16}
	file.Apply(cfg)

	assert.Empty(t, cfg.PipelineStages)
	assert.Equal(t, "round_robin", cfg.DefaultPolicy)
	assert.Equal(t, 16, cfg.AssignmentConcurrency)
}

func TestParsePipelineFileRejectsRepeatedStage(t *testing.T) {
	_, err := ParsePipelineFile([]byte("stages: [New, new]\n"))
	require.Error(t, err)
}

func TestParsePipelineFileRejectsMalformedYAML(t *testing.T) {
	_, err := ParsePipelineFile([]byte("stages: [New\n"))
	require.Error(t, err)
}
