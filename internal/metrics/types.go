// internal/metrics/types.go
package metrics

import "time"

// ModelMetrics is one entry of the metrics report: everything recorded for
// a single served model across runs.
type ModelMetrics struct {
	ModelName          string                 `json:"model_name"`
	LastUpdatedUTC     time.Time              `json:"last_updated_utc"`
	OverallStats       RunningAggregatedStats `json:"overall_stats"`
	PerformanceBuckets []PerformanceBucket    `json:"performance_buckets"`
}

// PerformanceBucket splits stats by prompt size; few_shot turn lists land in
// larger input_tokens buckets than zero_shot ones.
type PerformanceBucket struct {
	Dimension string                 `json:"dimension"`
	Bucket    string                 `json:"bucket"`
	Stats     RunningAggregatedStats `json:"stats"`
}

// RunningAggregatedStats counts classification requests and keeps running
// stats for the completed ones. Failed requests only bump the counters.
type RunningAggregatedStats struct {
	TotalRequests  int64 `json:"total_requests"`
	FailedRequests int64 `json:"failed_requests"`

	TokensPerSecond     RunningStat `json:"tokens_per_second"`
	InputTokens         RunningStat `json:"input_tokens"`
	OutputTokens        RunningStat `json:"output_tokens"`
	TotalDurationMillis RunningStat `json:"total_duration_ms"`
}

// RunningStat is a Welford accumulator; Count and M2 are persisted only in
// memory.
type RunningStat struct {
	Count int64   `json:"-"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"-"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}
