package validation

import (
	"encoding/json"
	"testing"

	"github.com/streamhub/pipeliner/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// inputStreamNode builds a valid realtime ingest node.
func inputStreamNode(id, org, stream string) pipeline.Node {
	return pipeline.Node{
		ID:         id,
		IOType:     pipeline.IOTypeInput,
		NodeType:   pipeline.NodeTypeStream,
		OrgID:      org,
		StreamName: pipeline.NewStreamName(stream),
		StreamType: pipeline.StreamTypeLogs,
	}
}

// outputStreamNode builds a valid output node writing to a local stream.
func outputStreamNode(id, org, stream string) pipeline.Node {
	return pipeline.Node{
		ID:         id,
		IOType:     pipeline.IOTypeOutput,
		NodeType:   pipeline.NodeTypeStream,
		OrgID:      org,
		StreamName: pipeline.NewStreamName(stream),
		StreamType: pipeline.StreamTypeLogs,
	}
}

// simplePipeline is the end-to-end happy path: one input, one output, one edge.
func simplePipeline() *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Source: pipeline.SourceDescriptor{OrgID: "org1", SourceType: "realtime"},
		Nodes: []pipeline.Node{
			inputStreamNode("in1", "org1", "logs_in"),
			outputStreamNode("out1", "org1", "logs_out"),
		},
		Edges: []pipeline.Edge{
			{ID: "e1", Source: "in1", Target: "out1"},
		},
	}
}

func TestValidate_EmptyPipeline(t *testing.T) {
	result := Validate(&pipeline.Pipeline{}, nil)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Errors, "errors should marshal as [], not null")
}

func TestValidate_SimplePipeline(t *testing.T) {
	result := Validate(simplePipeline(), nil)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_MissingIOTypeAndNodeType(t *testing.T) {
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{{ID: "n1"}},
	}

	result := Validate(p, nil)

	require.False(t, result.Valid)
	// A node invalid in both ways contributes two separate errors.
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Node n1 is missing io_type")
	assert.Contains(t, result.Errors[1], "Node n1 is missing node_type")
}

func TestValidate_InvalidEnumValues(t *testing.T) {
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{{
			ID:         "n1",
			IOType:     "sideways",
			NodeType:   "teleport",
			StreamType: "events",
		}},
	}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 3)
	assert.Equal(t, "Node n1 has invalid io_type 'sideways'. Must be one of: input, output, default", result.Errors[0])
	assert.Equal(t, "Node n1 has invalid node_type 'teleport'. Must be one of: stream, query, function, condition, remote_stream", result.Errors[1])
	assert.Equal(t, "Node n1 has invalid stream_type 'events'. Must be one of: logs, metrics, traces", result.Errors[2])
}

func TestValidate_OrgMismatch(t *testing.T) {
	p := simplePipeline()
	p.Nodes[0].OrgID = "org2"

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node in1 has org_id 'org2' but the pipeline organization is 'org1'", result.Errors[0])
}

func TestValidate_OrgMissing(t *testing.T) {
	p := simplePipeline()
	p.Nodes[1].OrgID = ""

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node out1 is missing org_id. Expected 'org1'", result.Errors[0])
}

func TestValidate_OrgFallbackToSelectedOrg(t *testing.T) {
	p := simplePipeline()
	p.Source.OrgID = ""
	p.Nodes[0].OrgID = "fallback"
	p.Nodes[1].OrgID = "fallback"

	result := Validate(p, &Context{SelectedOrgID: "fallback"})
	assert.True(t, result.Valid)

	result = Validate(p, &Context{SelectedOrgID: "other"})
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "but the pipeline organization is 'other'")
}

func TestValidate_UsedStream(t *testing.T) {
	p := simplePipeline()
	ctx := &Context{UsedStreams: []string{"logs_in"}}

	result := Validate(p, ctx)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node in1 input stream 'logs_in' is already used by another pipeline", result.Errors[0])
}

func TestValidate_UsedStreamExemptWhenUnchanged(t *testing.T) {
	p := simplePipeline()
	original := simplePipeline()

	// Re-saving the unchanged assignment is allowed.
	ctx := &Context{
		UsedStreams:      []string{"logs_in"},
		OriginalPipeline: original,
	}
	result := Validate(p, ctx)
	assert.True(t, result.Valid)

	// Renaming INTO a stream used elsewhere is rejected.
	original.Nodes[0].StreamName = pipeline.NewStreamName("previous_stream")
	result = Validate(p, ctx)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "already used by another pipeline")
}

func TestValidate_UsedStreamSkippedWithoutContext(t *testing.T) {
	result := Validate(simplePipeline(), nil)
	assert.True(t, result.Valid)
}

func queryNode(id string) pipeline.Node {
	return pipeline.Node{
		ID:       id,
		IOType:   pipeline.IOTypeInput,
		NodeType: pipeline.NodeTypeQuery,
		QueryCondition: &pipeline.QueryCondition{
			Type: pipeline.QueryTypeSQL,
			SQL:  strPtr("SELECT * FROM logs"),
		},
		TriggerCondition: &pipeline.TriggerCondition{
			FrequencyType: pipeline.FrequencyTypeMinutes,
			Frequency:     5,
			Period:        5,
			Timezone:      "UTC",
		},
	}
}

func TestValidate_QueryNodeHappyPath(t *testing.T) {
	p := &pipeline.Pipeline{
		Source: pipeline.SourceDescriptor{OrgID: "org1", SourceType: "scheduled"},
		Nodes: []pipeline.Node{
			queryNode("q1"),
			outputStreamNode("out1", "org1", "results"),
		},
		Edges: []pipeline.Edge{{ID: "e1", Source: "q1", Target: "out1"}},
	}

	result := Validate(p, nil)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestValidate_QueryNodeMissingConditions(t *testing.T) {
	n := queryNode("q1")
	n.QueryCondition = nil
	n.TriggerCondition = nil
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "Node q1 is a query node but has no query_condition", result.Errors[0])
	assert.Equal(t, "Node q1 is a query node but has no trigger_condition", result.Errors[1])
}

func TestValidate_QueryConditionMutualExclusivity(t *testing.T) {
	// sql type with a non-null promql_condition is an error even though the
	// sql text itself is valid.
	n := queryNode("q1")
	n.QueryCondition.PromQLCondition = strPtr("rate > 0.5")
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node q1 query_condition type is sql but promql fields are set", result.Errors[0])

	// promql type with a lingering sql payload.
	n = queryNode("q2")
	n.QueryCondition = &pipeline.QueryCondition{
		Type:   pipeline.QueryTypePromQL,
		PromQL: strPtr("up == 0"),
		SQL:    strPtr("SELECT 1"),
	}
	p = &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result = Validate(p, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node q2 query_condition type is promql but the sql field is set", result.Errors[0])
}

func TestValidate_QueryConditionEmptyText(t *testing.T) {
	n := queryNode("q1")
	n.QueryCondition.SQL = strPtr("")
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node q1 query_condition type is sql but the sql query is empty", result.Errors[0])
}

func TestValidate_QueryConditionInvalidType(t *testing.T) {
	n := queryNode("q1")
	n.QueryCondition = &pipeline.QueryCondition{Type: "graphql"}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node q1 query_condition has invalid type 'graphql'. Must be one of: sql, promql", result.Errors[0])
}

func TestValidate_TriggerFrequencyPeriodMismatch(t *testing.T) {
	// Both values individually satisfy >= 1, the mismatch alone is the error.
	n := queryNode("q1")
	n.TriggerCondition.Frequency = 2
	n.TriggerCondition.Period = 5
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node q1 trigger_condition frequency (2) must equal period (5)", result.Errors[0])
}

func TestValidate_TriggerMinutesBounds(t *testing.T) {
	n := queryNode("q1")
	n.TriggerCondition.Frequency = 0
	n.TriggerCondition.Period = 0
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)

	// frequency and period each fail >= 1; 0 == 0 so no mismatch error.
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "Node q1 trigger_condition frequency must be at least 1. Found 0", result.Errors[0])
	assert.Equal(t, "Node q1 trigger_condition period must be at least 1. Found 0", result.Errors[1])
}

func TestValidate_TriggerCron(t *testing.T) {
	n := queryNode("q1")
	n.TriggerCondition = &pipeline.TriggerCondition{
		FrequencyType: pipeline.FrequencyTypeCron,
		Timezone:      "UTC",
	}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node q1 trigger_condition is missing a cron expression", result.Errors[0])

	// Cron syntax is deliberately not checked.
	n.TriggerCondition.Cron = "not a cron expression"
	result = Validate(p, nil)
	assert.True(t, result.Valid)
}

func TestValidate_TriggerNegativeSilenceAndThreshold(t *testing.T) {
	n := queryNode("q1")
	n.TriggerCondition.Silence = -5
	n.TriggerCondition.Threshold = -1
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "Node q1 trigger_condition silence must be >= 0. Found -5", result.Errors[0])
	assert.Equal(t, "Node q1 trigger_condition threshold must be >= 0. Found -1", result.Errors[1])
}

func TestValidate_TriggerMissingTimezone(t *testing.T) {
	n := queryNode("q1")
	n.TriggerCondition.Timezone = ""
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{n}}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node q1 trigger_condition is missing a timezone", result.Errors[0])
}

func functionNode(id, fn string) pipeline.Node {
	return pipeline.Node{
		ID:           id,
		IOType:       pipeline.IOTypeDefault,
		NodeType:     pipeline.NodeTypeFunction,
		Name:         fn,
		AfterFlatten: boolPtr(true),
	}
}

func TestValidate_FunctionNode(t *testing.T) {
	p := simplePipeline()
	p.Nodes = append(p.Nodes, functionNode("f1", "redact_pii"))
	p.Edges = []pipeline.Edge{
		{ID: "e1", Source: "in1", Target: "f1"},
		{ID: "e2", Source: "f1", Target: "out1"},
	}

	result := Validate(p, nil)
	assert.True(t, result.Valid, "errors: %v", result.Errors)

	// Unknown function when the functions list is supplied.
	result = Validate(p, &Context{Functions: []string{"parse_json"}})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node f1 references unknown function 'redact_pii'", result.Errors[0])

	// Known function passes.
	result = Validate(p, &Context{Functions: []string{"redact_pii"}})
	assert.True(t, result.Valid)
}

func TestValidate_FunctionNodeAfterFlattenRequired(t *testing.T) {
	p := simplePipeline()
	f := functionNode("f1", "redact_pii")
	f.AfterFlatten = nil
	p.Nodes = append(p.Nodes, f)
	p.Edges = []pipeline.Edge{
		{ID: "e1", Source: "in1", Target: "f1"},
		{ID: "e2", Source: "f1", Target: "out1"},
	}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node f1 is a function node but after_flatten is not set", result.Errors[0])
}

func TestValidate_FunctionNodeMissingName(t *testing.T) {
	p := &pipeline.Pipeline{
		Nodes: []pipeline.Node{{
			ID:           "f1",
			IOType:       pipeline.IOTypeDefault,
			NodeType:     pipeline.NodeTypeFunction,
			AfterFlatten: boolPtr(false),
		}},
	}

	// The name existence check is not reached without a name, and context
	// rules are skipped entirely when no list is supplied.
	result := Validate(p, &Context{Functions: []string{"a"}})

	assert.Contains(t, result.Errors, "Node f1 is a function node but has no function name")
}

func TestValidate_OutputNodes(t *testing.T) {
	p := simplePipeline()
	p.Nodes[1].StreamName = pipeline.StreamName{}

	result := Validate(p, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node out1 is an output stream node but has no stream name", result.Errors[0])
}

func TestValidate_RemoteStreamDestination(t *testing.T) {
	p := simplePipeline()
	p.Nodes[1] = pipeline.Node{
		ID:              "out1",
		IOType:          pipeline.IOTypeOutput,
		NodeType:        pipeline.NodeTypeRemoteStream,
		OrgID:           "org1",
		DestinationName: "s3_archive",
	}

	result := Validate(p, nil)
	assert.True(t, result.Valid, "errors: %v", result.Errors)

	result = Validate(p, &Context{Destinations: []string{"kafka_sink"}})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node out1 references unknown destination 's3_archive'", result.Errors[0])

	result = Validate(p, &Context{Destinations: []string{"s3_archive"}})
	assert.True(t, result.Valid)

	p.Nodes[1].DestinationName = ""
	result = Validate(p, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Node out1 is a remote stream node but has no destination name", result.Errors[0])
}

func TestValidate_DanglingEdges(t *testing.T) {
	p := simplePipeline()
	p.Edges = append(p.Edges, pipeline.Edge{ID: "e2", Source: "in1", Target: "ghost"})

	result := Validate(p, nil)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Edge e2 references non-existent target node 'ghost'", result.Errors[0])
}

func TestValidate_DanglingEdgeBothEndpoints(t *testing.T) {
	p := &pipeline.Pipeline{
		Edges: []pipeline.Edge{{ID: "e1", Source: "a", Target: "b"}},
	}

	result := Validate(p, nil)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "Edge e1 references non-existent source node 'a'", result.Errors[0])
	assert.Equal(t, "Edge e1 references non-existent target node 'b'", result.Errors[1])
}

func TestValidate_InputNodeWithIncomingEdge(t *testing.T) {
	p := simplePipeline()
	p.Edges = append(p.Edges, pipeline.Edge{ID: "e2", Source: "out1", Target: "in1"})

	result := Validate(p, nil)

	require.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Node in1 is an input node and should not have incoming edges. Found 1 incoming edges.")
}

func TestValidate_OutputNodeEdgeCounts(t *testing.T) {
	// Two incoming edges.
	p := simplePipeline()
	p.Nodes = append(p.Nodes, inputStreamNode("in2", "org1", "more_logs"))
	p.Edges = append(p.Edges, pipeline.Edge{ID: "e2", Source: "in2", Target: "out1"})

	result := Validate(p, nil)
	assert.Contains(t, result.Errors, "Node out1 is an output node and should have exactly one incoming edge. Found 2 incoming edges.")

	// No incoming edges.
	p = simplePipeline()
	p.Edges = nil
	result = Validate(p, nil)
	assert.Contains(t, result.Errors, "Node out1 is an output node and should have exactly one incoming edge. Found 0 incoming edges.")
}

func TestValidate_TransformNodeDegrees(t *testing.T) {
	p := simplePipeline()
	p.Nodes = append(p.Nodes, functionNode("f1", "redact_pii"))

	result := Validate(p, nil)

	assert.Contains(t, result.Errors, "Node f1 is a function node and should have at least one incoming edge")
	assert.Contains(t, result.Errors, "Node f1 is a function node and should have at least one outgoing edge")
}

func TestValidate_ConditionNodeDegrees(t *testing.T) {
	p := simplePipeline()
	p.Nodes = append(p.Nodes, pipeline.Node{
		ID:        "c1",
		IOType:    pipeline.IOTypeDefault,
		NodeType:  pipeline.NodeTypeCondition,
		Condition: "level == 'error'",
	})
	p.Edges = append(p.Edges, pipeline.Edge{ID: "e2", Source: "in1", Target: "c1"})

	result := Validate(p, nil)

	assert.Contains(t, result.Errors, "Node c1 is a condition node and should have at least one outgoing edge")
	assert.NotContains(t, result.Errors, "Node c1 is a condition node and should have at least one incoming edge")
}

func TestValidate_Idempotent(t *testing.T) {
	p := simplePipeline()
	p.Nodes[0].OrgID = "wrong"
	p.Nodes = append(p.Nodes, functionNode("f1", ""))
	ctx := &Context{UsedStreams: []string{"logs_in"}}

	first := Validate(p, ctx)
	second := Validate(p, ctx)

	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Valid, second.Valid)
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	p := &pipeline.Pipeline{
		Source: pipeline.SourceDescriptor{OrgID: "org1"},
		Nodes: []pipeline.Node{
			{ID: "n1"},
			inputStreamNode("in1", "org2", "logs_in"),
		},
		Edges: []pipeline.Edge{
			{ID: "e1", Source: "in1", Target: "ghost"},
		},
	}

	result := Validate(p, nil)

	// Node typing (2), org mismatch (1), dangling target (1).
	require.Len(t, result.Errors, 4)
	assert.False(t, result.Valid)
}

func TestResult_JSONShape(t *testing.T) {
	data, err := json.Marshal(Validate(&pipeline.Pipeline{}, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_valid": true, "errors": []}`, string(data))
}
