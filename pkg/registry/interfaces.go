// Package registry provides functionality for managing pipeline definitions.
package registry

import (
	"github.com/streamhub/pipeliner/pkg/pipeline"
	"github.com/streamhub/pipeliner/pkg/validation"
)

// PipelineRegistry manages pipeline definitions for organizations. Definitions
// are validated before they are persisted; an invalid definition is never
// stored.
type PipelineRegistry interface {
	// Create validates and stores a new pipeline definition, returning its ID
	Create(orgID string, content string) (string, error)

	// Get retrieves a pipeline definition by ID
	Get(orgID string, id string) (string, error)

	// List returns metadata for all pipelines of an organization
	List(orgID string) ([]pipeline.Info, error)

	// Update validates and replaces an existing pipeline definition
	Update(orgID string, id string, content string) error

	// Delete removes a pipeline definition
	Delete(orgID string, id string) error

	// Validate checks a definition without persisting it. pipelineID may be
	// empty for definitions that have never been saved; when set, the stored
	// definition under that ID is treated as the pipeline's previous state.
	Validate(orgID string, pipelineID string, content string) (validation.Result, error)
}
