// Package schedule computes next-firing previews for query-node trigger
// conditions. Previews are display-only: a cron expression that fails to parse
// produces a preview error, it never invalidates the pipeline.
package schedule

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/streamhub/pipeliner/pkg/pipeline"
)

// Preview describes when a trigger condition would fire next.
type Preview struct {
	// FrequencyType echoes the trigger's frequency type ("minutes" or "cron")
	FrequencyType string `json:"frequency_type"`

	// Description is a human-readable summary of the schedule
	Description string `json:"description"`

	// NextRuns holds the upcoming firing times, empty when Error is set
	NextRuns []time.Time `json:"next_runs"`

	// Error explains why no preview could be computed
	Error string `json:"error,omitempty"`
}

// DefaultRunCount is how many upcoming firings a preview includes.
const DefaultRunCount = 5

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ForTrigger computes a firing preview for a trigger condition starting at the
// given time. A nil trigger yields an error preview rather than a panic.
func ForTrigger(tc *pipeline.TriggerCondition, from time.Time, count int) Preview {
	if count <= 0 {
		count = DefaultRunCount
	}
	if tc == nil {
		return Preview{Error: "no trigger condition"}
	}

	switch tc.FrequencyType {
	case pipeline.FrequencyTypeMinutes:
		return minutesPreview(tc, from, count)
	case pipeline.FrequencyTypeCron:
		return cronPreview(tc, from, count)
	default:
		return Preview{
			FrequencyType: string(tc.FrequencyType),
			Error:         fmt.Sprintf("unknown frequency type '%s'", tc.FrequencyType),
		}
	}
}

func minutesPreview(tc *pipeline.TriggerCondition, from time.Time, count int) Preview {
	preview := Preview{FrequencyType: string(pipeline.FrequencyTypeMinutes)}

	if tc.Frequency < 1 {
		preview.Error = fmt.Sprintf("frequency must be at least 1 minute, got %d", tc.Frequency)
		return preview
	}

	interval := time.Duration(tc.Frequency) * time.Minute
	preview.Description = fmt.Sprintf("every %d minute(s)", tc.Frequency)
	preview.NextRuns = make([]time.Time, count)
	for i := range preview.NextRuns {
		preview.NextRuns[i] = from.Add(time.Duration(i+1) * interval)
	}
	return preview
}

func cronPreview(tc *pipeline.TriggerCondition, from time.Time, count int) Preview {
	preview := Preview{FrequencyType: string(pipeline.FrequencyTypeCron)}

	if tc.Cron == "" {
		preview.Error = "cron expression is empty"
		return preview
	}

	loc := time.UTC
	if tc.Timezone != "" {
		l, err := time.LoadLocation(tc.Timezone)
		if err != nil {
			preview.Error = fmt.Sprintf("unknown timezone '%s'", tc.Timezone)
			return preview
		}
		loc = l
	}

	sched, err := cronParser.Parse(tc.Cron)
	if err != nil {
		preview.Error = fmt.Sprintf("cron expression '%s' does not parse: %v", tc.Cron, err)
		return preview
	}

	preview.Description = fmt.Sprintf("cron '%s' in %s", tc.Cron, loc)
	preview.NextRuns = make([]time.Time, 0, count)
	next := from.In(loc)
	for i := 0; i < count; i++ {
		next = sched.Next(next)
		if next.IsZero() {
			break
		}
		preview.NextRuns = append(preview.NextRuns, next)
	}
	return preview
}

// ForPipeline collects previews for every query node in a pipeline that
// carries a trigger condition, keyed by node ID.
func ForPipeline(p *pipeline.Pipeline, from time.Time, count int) map[string]Preview {
	previews := make(map[string]Preview)
	for _, n := range p.Nodes {
		if n.NodeType != pipeline.NodeTypeQuery || n.TriggerCondition == nil {
			continue
		}
		previews[n.ID] = ForTrigger(n.TriggerCondition, from, count)
	}
	return previews
}
