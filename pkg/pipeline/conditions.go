package pipeline

// QueryType selects the query language of a query node.
type QueryType string

const (
	QueryTypeSQL    QueryType = "sql"
	QueryTypePromQL QueryType = "promql"
)

// FrequencyType selects how a query node's schedule is expressed.
type FrequencyType string

const (
	FrequencyTypeMinutes FrequencyType = "minutes"
	FrequencyTypeCron    FrequencyType = "cron"
)

// QueryCondition is the stored query of a query input node. Exactly one of the
// SQL and PromQL payloads may be populated, matching Type.
type QueryCondition struct {
	// Type is "sql" or "promql"
	Type QueryType `json:"type" yaml:"type"`

	// SQL is the query text when Type is "sql"
	SQL *string `json:"sql,omitempty" yaml:"sql,omitempty"`

	// PromQL is the query text when Type is "promql"
	PromQL *string `json:"promql,omitempty" yaml:"promql,omitempty"`

	// PromQLCondition is the alert condition attached to a PromQL query
	PromQLCondition *string `json:"promql_condition,omitempty" yaml:"promql_condition,omitempty"`

	// VRLFunction optionally post-processes query results
	VRLFunction *string `json:"vrl_function,omitempty" yaml:"vrl_function,omitempty"`
}

// TriggerCondition is the schedule of a query input node.
type TriggerCondition struct {
	// FrequencyType is "minutes" or "cron"
	FrequencyType FrequencyType `json:"frequency_type" yaml:"frequency_type"`

	// Frequency is the run interval in minutes (minutes schedules)
	Frequency int64 `json:"frequency,omitempty" yaml:"frequency,omitempty"`

	// Period is the query window in minutes; must equal Frequency
	Period int64 `json:"period,omitempty" yaml:"period,omitempty"`

	// Cron is the cron expression (cron schedules)
	Cron string `json:"cron,omitempty" yaml:"cron,omitempty"`

	// Timezone the schedule is evaluated in
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	// Silence is the post-trigger mute window in minutes
	Silence int64 `json:"silence,omitempty" yaml:"silence,omitempty"`

	// Threshold is the minimum number of results that fires the trigger
	Threshold int64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}
