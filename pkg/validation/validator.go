package validation

import (
	"fmt"
	"strings"

	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// Validate runs the full validation pass over a pipeline definition. It is a
// pure function: identical inputs always produce the same errors in the same
// order, inputs are never mutated, and no error is ever raised as a panic.
// ctx may be nil, which skips every rule that needs external reference data.
//
// Three passes run unconditionally: per-node rules, edge referential
// integrity, then edge-count rules per node. All applicable errors accumulate
// so the caller can present every problem in a single review.
func Validate(p *pipeline.Pipeline, ctx *Context) Result {
	v := &run{pipeline: p, ctx: ctx, errors: []string{}}

	v.validateNodes()
	v.validateEdgeReferences()
	v.validateEdgeCounts()

	return Result{
		Valid:  len(v.errors) == 0,
		Errors: v.errors,
	}
}

// run is the error collector threaded through the three passes.
type run struct {
	pipeline *pipeline.Pipeline
	ctx      *Context
	errors   []string
}

func (v *run) errorf(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

// expectedOrgID is the value every stream node's org_id must match: the
// pipeline source org, falling back to the caller-selected org when absent.
func (v *run) expectedOrgID() string {
	if v.pipeline.Source.OrgID != "" {
		return v.pipeline.Source.OrgID
	}
	if v.ctx != nil {
		return v.ctx.SelectedOrgID
	}
	return ""
}

// originalStreamNames maps node ID to the input-stream name the node had in
// the previously saved pipeline, for the used-stream rename exemption.
func (v *run) originalStreamNames() map[string]string {
	names := make(map[string]string)
	if v.ctx == nil || v.ctx.OriginalPipeline == nil {
		return names
	}
	for _, n := range v.ctx.OriginalPipeline.Nodes {
		if name := n.StreamName.Value(); name != "" {
			names[n.ID] = name
		}
	}
	return names
}

// validateNodes is the per-node pass.
func (v *run) validateNodes() {
	expectedOrg := v.expectedOrgID()
	originalNames := v.originalStreamNames()

	for _, n := range v.pipeline.Nodes {
		v.validateNodeTyping(n)

		switch n.NodeType {
		case pipeline.NodeTypeStream, pipeline.NodeTypeRemoteStream:
			v.validateNodeOrg(n, expectedOrg)
		}

		if n.IOType == pipeline.IOTypeInput && n.NodeType == pipeline.NodeTypeStream {
			v.validateInputStream(n, originalNames)
		}
		if n.IOType == pipeline.IOTypeInput && n.NodeType == pipeline.NodeTypeQuery {
			v.validateQueryNode(n)
		}
		if n.IOType == pipeline.IOTypeDefault && n.NodeType == pipeline.NodeTypeFunction {
			v.validateFunctionNode(n)
		}
		if n.IOType == pipeline.IOTypeOutput {
			v.validateOutputNode(n)
		}
	}
}

func (v *run) validateNodeTyping(n pipeline.Node) {
	if !isValidIOType(n.IOType) {
		if n.IOType == "" {
			v.errorf("Node %s is missing io_type. Must be one of: %s", n.ID, joinIOTypes())
		} else {
			v.errorf("Node %s has invalid io_type '%s'. Must be one of: %s", n.ID, n.IOType, joinIOTypes())
		}
	}

	if !isValidNodeType(n.NodeType) {
		if n.NodeType == "" {
			v.errorf("Node %s is missing node_type. Must be one of: %s", n.ID, joinNodeTypes())
		} else {
			v.errorf("Node %s has invalid node_type '%s'. Must be one of: %s", n.ID, n.NodeType, joinNodeTypes())
		}
	}

	// stream_type is only conditionally required, so absence is tolerated
	if n.StreamType != "" && !isValidStreamType(n.StreamType) {
		v.errorf("Node %s has invalid stream_type '%s'. Must be one of: %s", n.ID, n.StreamType, joinStreamTypes())
	}
}

func (v *run) validateNodeOrg(n pipeline.Node, expectedOrg string) {
	if n.OrgID == "" {
		v.errorf("Node %s is missing org_id. Expected '%s'", n.ID, expectedOrg)
		return
	}
	if n.OrgID != expectedOrg {
		v.errorf("Node %s has org_id '%s' but the pipeline organization is '%s'", n.ID, n.OrgID, expectedOrg)
	}
}

// validateInputStream enforces the one history-aware rule: an input stream may
// not be claimed by another pipeline, unless this very node already had that
// exact stream name in the previously saved state.
func (v *run) validateInputStream(n pipeline.Node, originalNames map[string]string) {
	if v.ctx == nil || v.ctx.UsedStreams == nil {
		return
	}

	name := n.StreamName.Value()
	if name == "" || !contains(v.ctx.UsedStreams, name) {
		return
	}
	if originalNames[n.ID] == name {
		// Re-saving an unchanged assignment is allowed.
		return
	}
	v.errorf("Node %s input stream '%s' is already used by another pipeline", n.ID, name)
}

func (v *run) validateQueryNode(n pipeline.Node) {
	if n.QueryCondition == nil {
		v.errorf("Node %s is a query node but has no query_condition", n.ID)
	} else {
		v.validateQueryCondition(n.ID, n.QueryCondition)
	}

	if n.TriggerCondition == nil {
		v.errorf("Node %s is a query node but has no trigger_condition", n.ID)
	} else {
		v.validateTriggerCondition(n.ID, n.TriggerCondition)
	}
}

func (v *run) validateQueryCondition(nodeID string, qc *pipeline.QueryCondition) {
	switch qc.Type {
	case pipeline.QueryTypeSQL:
		if !hasText(qc.SQL) {
			v.errorf("Node %s query_condition type is sql but the sql query is empty", nodeID)
		}
		if qc.PromQL != nil || qc.PromQLCondition != nil {
			v.errorf("Node %s query_condition type is sql but promql fields are set", nodeID)
		}
	case pipeline.QueryTypePromQL:
		if !hasText(qc.PromQL) {
			v.errorf("Node %s query_condition type is promql but the promql query is empty", nodeID)
		}
		if qc.SQL != nil {
			v.errorf("Node %s query_condition type is promql but the sql field is set", nodeID)
		}
	case "":
		v.errorf("Node %s query_condition is missing a type. Must be one of: sql, promql", nodeID)
	default:
		v.errorf("Node %s query_condition has invalid type '%s'. Must be one of: sql, promql", nodeID, qc.Type)
	}
}

func (v *run) validateTriggerCondition(nodeID string, tc *pipeline.TriggerCondition) {
	switch tc.FrequencyType {
	case pipeline.FrequencyTypeMinutes:
		if tc.Frequency < 1 {
			v.errorf("Node %s trigger_condition frequency must be at least 1. Found %d", nodeID, tc.Frequency)
		}
		if tc.Period < 1 {
			v.errorf("Node %s trigger_condition period must be at least 1. Found %d", nodeID, tc.Period)
		}
		if tc.Frequency != tc.Period {
			v.errorf("Node %s trigger_condition frequency (%d) must equal period (%d)", nodeID, tc.Frequency, tc.Period)
		}
	case pipeline.FrequencyTypeCron:
		// Cron syntax itself is not checked here.
		if tc.Cron == "" {
			v.errorf("Node %s trigger_condition is missing a cron expression", nodeID)
		}
	case "":
		v.errorf("Node %s trigger_condition is missing a frequency_type. Must be one of: minutes, cron", nodeID)
	default:
		v.errorf("Node %s trigger_condition has invalid frequency_type '%s'. Must be one of: minutes, cron", nodeID, tc.FrequencyType)
	}

	if tc.Timezone == "" {
		v.errorf("Node %s trigger_condition is missing a timezone", nodeID)
	}
	if tc.Silence < 0 {
		v.errorf("Node %s trigger_condition silence must be >= 0. Found %d", nodeID, tc.Silence)
	}
	if tc.Threshold < 0 {
		v.errorf("Node %s trigger_condition threshold must be >= 0. Found %d", nodeID, tc.Threshold)
	}
}

func (v *run) validateFunctionNode(n pipeline.Node) {
	// after_flatten must be an explicit boolean, not merely truthy.
	if n.AfterFlatten == nil {
		v.errorf("Node %s is a function node but after_flatten is not set", n.ID)
	}

	if n.Name == "" {
		v.errorf("Node %s is a function node but has no function name", n.ID)
		return
	}
	if v.ctx != nil && v.ctx.Functions != nil && !contains(v.ctx.Functions, n.Name) {
		v.errorf("Node %s references unknown function '%s'", n.ID, n.Name)
	}
}

func (v *run) validateOutputNode(n pipeline.Node) {
	switch n.NodeType {
	case pipeline.NodeTypeStream:
		if n.StreamName.Value() == "" {
			v.errorf("Node %s is an output stream node but has no stream name", n.ID)
		}
	case pipeline.NodeTypeRemoteStream:
		if n.DestinationName == "" {
			v.errorf("Node %s is a remote stream node but has no destination name", n.ID)
			return
		}
		if v.ctx != nil && v.ctx.Destinations != nil && !contains(v.ctx.Destinations, n.DestinationName) {
			v.errorf("Node %s references unknown destination '%s'", n.ID, n.DestinationName)
		}
	}
}

// validateEdgeReferences is the edge referential-integrity pass: every edge
// endpoint must name a node that exists in this pipeline.
func (v *run) validateEdgeReferences() {
	nodeIDs := make(map[string]bool, len(v.pipeline.Nodes))
	for _, n := range v.pipeline.Nodes {
		nodeIDs[n.ID] = true
	}

	for _, e := range v.pipeline.Edges {
		if !nodeIDs[e.Source] {
			v.errorf("Edge %s references non-existent source node '%s'", e.ID, e.Source)
		}
		if !nodeIDs[e.Target] {
			v.errorf("Edge %s references non-existent target node '%s'", e.ID, e.Target)
		}
	}
}

// validateEdgeCounts is the connectivity pass: in/out degree rules per node
// role. Only degree counts are checked, not reachability or acyclicity.
func (v *run) validateEdgeCounts() {
	inDegree := make(map[string]int, len(v.pipeline.Nodes))
	outDegree := make(map[string]int, len(v.pipeline.Nodes))
	for _, n := range v.pipeline.Nodes {
		inDegree[n.ID] = 0
		outDegree[n.ID] = 0
	}
	for _, e := range v.pipeline.Edges {
		outDegree[e.Source]++
		inDegree[e.Target]++
	}

	for _, n := range v.pipeline.Nodes {
		switch n.IOType {
		case pipeline.IOTypeInput:
			if in := inDegree[n.ID]; in != 0 {
				v.errorf("Node %s is an input node and should not have incoming edges. Found %d incoming edges.", n.ID, in)
			}
		case pipeline.IOTypeOutput:
			if in := inDegree[n.ID]; in != 1 {
				v.errorf("Node %s is an output node and should have exactly one incoming edge. Found %d incoming edges.", n.ID, in)
			}
		}

		if n.NodeType == pipeline.NodeTypeFunction || n.NodeType == pipeline.NodeTypeCondition {
			if inDegree[n.ID] < 1 {
				v.errorf("Node %s is a %s node and should have at least one incoming edge", n.ID, n.NodeType)
			}
			if outDegree[n.ID] < 1 {
				v.errorf("Node %s is a %s node and should have at least one outgoing edge", n.ID, n.NodeType)
			}
		}
	}
}

// --- helpers ---

func isValidIOType(t pipeline.IOType) bool {
	for _, v := range pipeline.IOTypes {
		if t == v {
			return true
		}
	}
	return false
}

func isValidNodeType(t pipeline.NodeType) bool {
	for _, v := range pipeline.NodeTypes {
		if t == v {
			return true
		}
	}
	return false
}

func isValidStreamType(t pipeline.StreamType) bool {
	for _, v := range pipeline.StreamTypes {
		if t == v {
			return true
		}
	}
	return false
}

func joinIOTypes() string {
	return joinStrings(len(pipeline.IOTypes), func(i int) string { return string(pipeline.IOTypes[i]) })
}

func joinNodeTypes() string {
	return joinStrings(len(pipeline.NodeTypes), func(i int) string { return string(pipeline.NodeTypes[i]) })
}

func joinStreamTypes() string {
	return joinStrings(len(pipeline.StreamTypes), func(i int) string { return string(pipeline.StreamTypes[i]) })
}

func joinStrings(n int, get func(int) string) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = get(i)
	}
	return strings.Join(parts, ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
