package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStreamName_DecodeString(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id": "n1", "stream_name": "app_logs"}`), &n)

	require.NoError(t, err)
	assert.Equal(t, "app_logs", n.StreamName.Value())
}

func TestStreamName_DecodeLabelValuePair(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id": "n1", "stream_name": {"label": "App Logs", "value": "app_logs"}}`), &n)

	require.NoError(t, err)
	assert.Equal(t, "app_logs", n.StreamName.Value())
}

func TestStreamName_DecodeRejectsOtherShapes(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id": "n1", "stream_name": 42}`), &n)
	assert.Error(t, err)
}

func TestStreamName_MarshalNormalizes(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"id": "n1", "stream_name": {"label": "App Logs", "value": "app_logs"}}`), &n))

	data, err := json.Marshal(n.StreamName)
	require.NoError(t, err)
	assert.Equal(t, `"app_logs"`, string(data))
}

func TestStreamName_DecodeYAML(t *testing.T) {
	var n Node
	err := yaml.Unmarshal([]byte("id: n1\nstream_name:\n  label: App Logs\n  value: app_logs\n"), &n)
	require.NoError(t, err)
	assert.Equal(t, "app_logs", n.StreamName.Value())

	var m Node
	err = yaml.Unmarshal([]byte("id: n2\nstream_name: app_logs\n"), &m)
	require.NoError(t, err)
	assert.Equal(t, "app_logs", m.StreamName.Value())
}

func TestPipeline_InputStreamNames(t *testing.T) {
	p := Pipeline{
		Nodes: []Node{
			{ID: "in1", IOType: IOTypeInput, NodeType: NodeTypeStream, StreamName: NewStreamName("a")},
			{ID: "out1", IOType: IOTypeOutput, NodeType: NodeTypeStream, StreamName: NewStreamName("b")},
			{ID: "in2", IOType: IOTypeInput, NodeType: NodeTypeQuery},
		},
	}

	assert.Equal(t, []string{"a"}, p.InputStreamNames())
}

func TestPipeline_NodeByID(t *testing.T) {
	p := Pipeline{Nodes: []Node{{ID: "n1"}}}

	n, ok := p.NodeByID("n1")
	require.True(t, ok)
	assert.Equal(t, "n1", n.ID)

	_, ok = p.NodeByID("missing")
	assert.False(t, ok)
}
