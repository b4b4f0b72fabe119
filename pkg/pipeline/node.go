package pipeline

// IOType is a node's structural role in the graph.
type IOType string

const (
	// IOTypeInput marks a graph source; input nodes accept no incoming edges
	IOTypeInput IOType = "input"

	// IOTypeOutput marks a graph sink; output nodes require exactly one incoming edge
	IOTypeOutput IOType = "output"

	// IOTypeDefault marks an interior transform node
	IOTypeDefault IOType = "default"
)

// NodeType is a node's behavioral kind.
type NodeType string

const (
	// NodeTypeStream reads from or writes to a named stream
	NodeTypeStream NodeType = "stream"

	// NodeTypeQuery runs a stored query on a schedule or in real time
	NodeTypeQuery NodeType = "query"

	// NodeTypeFunction applies a named processing function
	NodeTypeFunction NodeType = "function"

	// NodeTypeCondition filters records by a boolean predicate
	NodeTypeCondition NodeType = "condition"

	// NodeTypeRemoteStream forwards to an externally configured destination
	NodeTypeRemoteStream NodeType = "remote_stream"
)

// StreamType is the kind of telemetry data a stream carries.
type StreamType string

const (
	StreamTypeLogs    StreamType = "logs"
	StreamTypeMetrics StreamType = "metrics"
	StreamTypeTraces  StreamType = "traces"
)

// IOTypes lists the accepted io_type values in display order.
var IOTypes = []IOType{IOTypeInput, IOTypeOutput, IOTypeDefault}

// NodeTypes lists the accepted node_type values in display order.
var NodeTypes = []NodeType{
	NodeTypeStream,
	NodeTypeQuery,
	NodeTypeFunction,
	NodeTypeCondition,
	NodeTypeRemoteStream,
}

// StreamTypes lists the accepted stream_type values in display order.
var StreamTypes = []StreamType{StreamTypeLogs, StreamTypeMetrics, StreamTypeTraces}

// Node is a vertex in the pipeline graph. Which payload fields apply depends on
// the io_type/node_type combination; unused fields stay at their zero value.
type Node struct {
	// ID uniquely identifies the node within the pipeline
	ID string `json:"id" yaml:"id"`

	// IOType is the node's structural role: input, output or default
	IOType IOType `json:"io_type" yaml:"io_type"`

	// NodeType is the node's kind: stream, query, function, condition or remote_stream
	NodeType NodeType `json:"node_type" yaml:"node_type"`

	// OrgID is the organization the node belongs to (stream and remote_stream nodes)
	OrgID string `json:"org_id,omitempty" yaml:"org_id,omitempty"`

	// StreamName names the stream a stream node reads or writes
	StreamName StreamName `json:"stream_name,omitempty" yaml:"stream_name,omitempty"`

	// StreamType is logs, metrics or traces (stream nodes)
	StreamType StreamType `json:"stream_type,omitempty" yaml:"stream_type,omitempty"`

	// DestinationName names the remote destination (remote_stream output nodes)
	DestinationName string `json:"destination_name,omitempty" yaml:"destination_name,omitempty"`

	// Name is the processing function to apply (function nodes)
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// AfterFlatten controls whether the function runs after record flattening
	// (function nodes). Must be an explicit boolean in the definition.
	AfterFlatten *bool `json:"after_flatten,omitempty" yaml:"after_flatten,omitempty"`

	// Condition is the filter predicate (condition nodes)
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	// QueryCondition configures the stored query (query input nodes)
	QueryCondition *QueryCondition `json:"query_condition,omitempty" yaml:"query_condition,omitempty"`

	// TriggerCondition configures the query schedule (query input nodes)
	TriggerCondition *TriggerCondition `json:"trigger_condition,omitempty" yaml:"trigger_condition,omitempty"`
}
