// Package loader parses pipeline definitions from JSON or YAML documents.
package loader

import (
	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// DefinitionLoader parses serialized pipeline definitions into the graph model.
type DefinitionLoader interface {
	// Parse converts a JSON or YAML document into a Pipeline
	Parse(data []byte) (*pipeline.Pipeline, error)

	// Validate checks that a document is decodable and structurally usable
	// (decodes cleanly, carries a name, every node and edge has an ID)
	Validate(data []byte) error
}
