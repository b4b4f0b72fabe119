package storage

import (
	"encoding/json"
	"time"

	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// extractMetadata pulls display metadata out of a stored definition document.
// Definitions that fail to decode still get usable metadata so a corrupt
// document never hides a pipeline from listings.
func extractMetadata(orgID, pipelineID string, definition []byte) pipeline.Metadata {
	meta := pipeline.Metadata{
		ID:    pipelineID,
		OrgID: orgID,
		Name:  pipelineID,
	}

	var p pipeline.Pipeline
	if err := json.Unmarshal(definition, &p); err != nil {
		return meta
	}

	if p.Name != "" {
		meta.Name = p.Name
	}
	meta.Description = p.Description
	meta.SourceType = p.Source.SourceType
	return meta
}

func nowUnix() int64 {
	return time.Now().Unix()
}
