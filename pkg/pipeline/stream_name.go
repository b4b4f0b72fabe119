package pipeline

import (
	"encoding/json"
	"fmt"
)

// StreamName is a stream reference that the graphical editor serializes either
// as a plain string or as a {label, value} option pair. Both shapes decode to
// the same normalized value; the rest of the code only ever sees the string.
type StreamName struct {
	value string
	label string
}

// NewStreamName wraps a plain stream name.
func NewStreamName(value string) StreamName {
	return StreamName{value: value}
}

// Value returns the normalized stream name, or "" when unset.
func (s StreamName) Value() string {
	return s.value
}

// IsZero reports whether no stream name was supplied. It also lets the YAML
// encoder omit empty values.
func (s StreamName) IsZero() bool {
	return s.value == "" && s.label == ""
}

// String implements fmt.Stringer.
func (s StreamName) String() string {
	return s.value
}

// UnmarshalJSON accepts either "name" or {"label": ..., "value": "name"}.
func (s *StreamName) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		s.value = plain
		s.label = ""
		return nil
	}

	var pair struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("stream_name must be a string or a {label, value} object: %w", err)
	}
	s.value = pair.Value
	s.label = pair.Label
	return nil
}

// MarshalJSON always emits the normalized string form.
func (s StreamName) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// UnmarshalYAML accepts the same two shapes as UnmarshalJSON. The legacy
// unmarshaler signature keeps the type decodable by both yaml.v2 and yaml.v3.
func (s *StreamName) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var plain string
	if err := unmarshal(&plain); err == nil {
		s.value = plain
		s.label = ""
		return nil
	}

	var pair struct {
		Label string `yaml:"label"`
		Value string `yaml:"value"`
	}
	if err := unmarshal(&pair); err != nil {
		return fmt.Errorf("stream_name must be a string or a {label, value} mapping: %w", err)
	}
	s.value = pair.Value
	s.label = pair.Label
	return nil
}

// MarshalYAML always emits the normalized string form.
func (s StreamName) MarshalYAML() (interface{}, error) {
	return s.value, nil
}
