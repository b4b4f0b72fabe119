// Package pipeline defines the pipeline graph model: a directed graph of typed
// nodes describing how data flows from an input stream or scheduled query
// through transform nodes to output streams and remote destinations.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Pipeline is the unit being validated and persisted.
type Pipeline struct {
	// ID uniquely identifies the pipeline within an organization
	ID string `json:"pipeline_id,omitempty" yaml:"pipeline_id,omitempty"`

	// Name is the human-readable pipeline name
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description of the pipeline
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Source describes where the pipeline ingests from
	Source SourceDescriptor `json:"source" yaml:"source"`

	// Nodes are the vertices of the pipeline graph
	Nodes []Node `json:"nodes" yaml:"nodes"`

	// Edges connect node IDs
	Edges []Edge `json:"edges" yaml:"edges"`
}

// SourceDescriptor identifies the ingest side of a pipeline. Its OrgID is the
// reference value every stream node's org_id is checked against.
type SourceDescriptor struct {
	// OrgID is the tenant/organization identifier
	OrgID string `json:"org_id" yaml:"org_id"`

	// SourceType is "realtime" or "scheduled"
	SourceType string `json:"source_type,omitempty" yaml:"source_type,omitempty"`

	// SourceStreamName is the stream the pipeline reads from
	SourceStreamName string `json:"stream_name,omitempty" yaml:"stream_name,omitempty"`
}

// Edge is a directed connection between two nodes of the same pipeline.
type Edge struct {
	// ID uniquely identifies the edge within the pipeline
	ID string `json:"id" yaml:"id"`

	// Source is the ID of the node the edge leaves
	Source string `json:"source" yaml:"source"`

	// Target is the ID of the node the edge enters
	Target string `json:"target" yaml:"target"`
}

// NewPipelineID generates a unique pipeline identifier.
func NewPipelineID() string {
	return uuid.New().String()
}

// NodeByID returns the node with the given ID, or false when absent.
func (p *Pipeline) NodeByID(id string) (Node, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// InputStreamNames returns the resolved stream names of every input stream
// node. These are the names the pipeline claims as its ingest streams.
func (p *Pipeline) InputStreamNames() []string {
	var names []string
	for _, n := range p.Nodes {
		if n.IOType == IOTypeInput && n.NodeType == NodeTypeStream {
			if name := n.StreamName.Value(); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// Metadata contains information about a stored pipeline.
type Metadata struct {
	// ID of the pipeline
	ID string `json:"id"`

	// OrgID is the organization that owns the pipeline
	OrgID string `json:"org_id"`

	// Name of the pipeline
	Name string `json:"name"`

	// Description of the pipeline
	Description string `json:"description"`

	// SourceType of the pipeline ("realtime" or "scheduled")
	SourceType string `json:"source_type,omitempty"`

	// CreatedAt is when the pipeline was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is when the pipeline was last updated
	UpdatedAt int64 `json:"updated_at"`
}

// Info is the API-facing view of pipeline metadata.
type Info struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SourceType  string    `json:"source_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// String implements fmt.Stringer for log lines.
func (p *Pipeline) String() string {
	return fmt.Sprintf("pipeline %s (%d nodes, %d edges)", p.ID, len(p.Nodes), len(p.Edges))
}
