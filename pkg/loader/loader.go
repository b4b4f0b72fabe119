package loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/streamhub/pipeliner/pkg/pipeline"
	"gopkg.in/yaml.v2"
)

// DefaultLoader implements the DefinitionLoader interface for JSON and YAML
// documents. Unknown fields in definitions are ignored.
type DefaultLoader struct{}

// NewLoader creates a new definition loader.
func NewLoader() DefinitionLoader {
	return &DefaultLoader{}
}

// Parse converts a JSON or YAML document into a Pipeline. The format is
// detected from the first non-whitespace byte: JSON documents start with '{',
// anything else is treated as YAML.
func (l *DefaultLoader) Parse(data []byte) (*pipeline.Pipeline, error) {
	var p pipeline.Pipeline

	if isJSON(data) {
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("invalid JSON pipeline definition: %w", err)
		}
		return &p, nil
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid YAML pipeline definition: %w", err)
	}
	return &p, nil
}

// Validate checks that a document decodes and is structurally usable. Graph
// semantics are not checked here; that is the validation package's job.
func (l *DefaultLoader) Validate(data []byte) error {
	p, err := l.Parse(data)
	if err != nil {
		return err
	}

	if p.Name == "" {
		return fmt.Errorf("pipeline name is required")
	}

	nodeIDs := make(map[string]bool, len(p.Nodes))
	for i, n := range p.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node at index %d has no id", i)
		}
		if nodeIDs[n.ID] {
			return fmt.Errorf("duplicate node id '%s'", n.ID)
		}
		nodeIDs[n.ID] = true
	}

	edgeIDs := make(map[string]bool, len(p.Edges))
	for i, e := range p.Edges {
		if e.ID == "" {
			return fmt.Errorf("edge at index %d has no id", i)
		}
		if edgeIDs[e.ID] {
			return fmt.Errorf("duplicate edge id '%s'", e.ID)
		}
		edgeIDs[e.ID] = true
	}

	return nil
}

func isJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
