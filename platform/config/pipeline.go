package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PipelineFile is the optional YAML overlay for lead pipeline settings.
//
//	stages: [New, Contacted, Interested, Closed Won, Closed Lost]
//	assignment:
//	  default_policy: round_robin
//	  concurrency: 8
type PipelineFile struct {
	Stages     []string `yaml:"stages"`
	Assignment struct {
		DefaultPolicy string `yaml:"default_policy"`
		Concurrency   int    `yaml:"concurrency"`
	} `yaml:"assignment"`
}

// LoadPipelineFile reads and parses a pipeline overlay.
func LoadPipelineFile(path string) (*PipelineFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config %s: %w", path, err)
	}
	return ParsePipelineFile(data)
}

// ParsePipelineFile parses the YAML body of a pipeline overlay.
func ParsePipelineFile(data []byte) (*PipelineFile, error) {
	var file PipelineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}

	stages := make([]string, 0, len(file.Stages))
	seen := make(map[string]struct{}, len(file.Stages))
	for _, stage := range file.Stages {
		trimmed := strings.TrimSpace(stage)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("parse pipeline config: stage %q listed twice", trimmed)
		}
		seen[key] = struct{}{}
		stages = append(stages, trimmed)
	}
	file.Stages = stages

	return &file, nil
}

// Apply overlays non-zero file values onto cfg.
func (f *PipelineFile) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}
	if len(f.Stages) > 0 {
		cfg.PipelineStages = f.Stages
	}
	if policy := strings.TrimSpace(f.Assignment.DefaultPolicy); policy != "" {
		cfg.DefaultPolicy = policy
	}
	if f.Assignment.Concurrency > 0 {
		cfg.AssignmentConcurrency = f.Assignment.Concurrency
	}
}
