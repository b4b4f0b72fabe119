// Package validation checks pipeline definitions for structural and semantic
// correctness before they are persisted or activated. Every violation becomes
// one human-readable error string; nothing stops at the first failure.
package validation

import "github.com/streamhub/pipeliner/pkg/pipeline"

// Context carries the externally supplied reference lists a validation run may
// consult. Every field is optional: a nil list disables the rules that need it,
// and each rule checks only for the specific list it depends on.
type Context struct {
	// StreamList holds all stream names known to the organization
	StreamList []string

	// UsedStreams holds stream names already claimed as inputs by other pipelines
	UsedStreams []string

	// OriginalPipeline is the previously saved state of the pipeline being
	// validated. It exempts unchanged input-stream assignments from the
	// used-stream check, so re-saving a pipeline never invalidates it.
	OriginalPipeline *pipeline.Pipeline

	// Functions holds the names of processing functions available to reference
	Functions []string

	// Destinations holds the remote destination names configured for this pipeline
	Destinations []string

	// SelectedOrgID is the fallback organization when the pipeline source omits one
	SelectedOrgID string
}

// Result is the outcome of a validation run. Valid is true exactly when Errors
// is empty; it is never set independently.
type Result struct {
	Valid  bool     `json:"is_valid"`
	Errors []string `json:"errors"`
}
