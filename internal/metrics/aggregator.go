// internal/metrics/aggregator.go
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mwiater/shotclass/internal/logging"
	"github.com/mwiater/shotclass/internal/providers"
)

// Aggregator collects and manages performance metrics for models.
type Aggregator struct {
	mutex    sync.Mutex
	metrics  map[string]*ModelMetrics
	filePath string
}

// NewAggregator creates an Aggregator persisting to filePath, seeded with
// whatever that file already holds.
func NewAggregator(filePath string) *Aggregator {
	agg := &Aggregator{
		metrics:  make(map[string]*ModelMetrics),
		filePath: filePath,
	}
	agg.load()
	return agg
}

// load reads metrics from the JSON file into memory.
func (a *Aggregator) load() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	data, err := os.ReadFile(a.filePath)
	if err != nil {
		return
	}

	var metricsSlice []*ModelMetrics
	if err := json.Unmarshal(data, &metricsSlice); err != nil {
		logging.LogWarn("[METRICS] ignoring unreadable metrics file %s: %v", a.filePath, err)
		return
	}

	for _, m := range metricsSlice {
		a.metrics[m.ModelName] = m
	}
}

// Save writes the current metrics from memory to the JSON file.
func (a *Aggregator) Save() error {
	logging.LogDebug("[METRICS] Saving metrics to %s", a.filePath)
	data, err := json.MarshalIndent(a.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	if dir := filepath.Dir(a.filePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := os.WriteFile(a.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Snapshot returns copies of the collected metrics ordered by model name.
func (a *Aggregator) Snapshot() []ModelMetrics {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	out := make([]ModelMetrics, 0, len(a.metrics))
	for _, m := range a.metrics {
		copied := *m
		copied.PerformanceBuckets = append([]PerformanceBucket(nil), m.PerformanceBuckets...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelName < out[j].ModelName })
	return out
}

// Record updates the metrics for a given model with a completed request.
func (a *Aggregator) Record(meta providers.StreamMetadata) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	modelMetrics := a.entry(meta.Model)
	updateStats(&modelMetrics.OverallStats, meta)

	bucket := getBucket(meta.PromptTokens)
	for i := range modelMetrics.PerformanceBuckets {
		if modelMetrics.PerformanceBuckets[i].Dimension == "input_tokens" && modelMetrics.PerformanceBuckets[i].Bucket == bucket {
			updateStats(&modelMetrics.PerformanceBuckets[i].Stats, meta)
			return
		}
	}
	newBucket := PerformanceBucket{
		Dimension: "input_tokens",
		Bucket:    bucket,
	}
	updateStats(&newBucket.Stats, meta)
	modelMetrics.PerformanceBuckets = append(modelMetrics.PerformanceBuckets, newBucket)
}

// RecordFailure counts a request that never produced a completion.
func (a *Aggregator) RecordFailure(model string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	modelMetrics := a.entry(model)
	modelMetrics.OverallStats.TotalRequests++
	modelMetrics.OverallStats.FailedRequests++
}

func (a *Aggregator) entry(model string) *ModelMetrics {
	modelMetrics, exists := a.metrics[model]
	if !exists {
		modelMetrics = &ModelMetrics{ModelName: model}
		a.metrics[model] = modelMetrics
	}
	modelMetrics.LastUpdatedUTC = time.Now().UTC()
	return modelMetrics
}

// updateStats updates the running statistics with new metadata.
func updateStats(stats *RunningAggregatedStats, meta providers.StreamMetadata) {
	stats.TotalRequests++

	durationMs := float64(meta.TotalDuration) / float64(time.Millisecond)
	var tokensPerSecond float64
	if meta.TotalDuration > 0 {
		tokensPerSecond = float64(meta.CompletionTokens) / (float64(meta.TotalDuration) / float64(time.Second))
	}
	updateRunningStat(&stats.TokensPerSecond, tokensPerSecond)
	updateRunningStat(&stats.InputTokens, float64(meta.PromptTokens))
	updateRunningStat(&stats.OutputTokens, float64(meta.CompletionTokens))
	updateRunningStat(&stats.TotalDurationMillis, durationMs)
}

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// getBucket determines the appropriate performance bucket for a given number of input tokens.
func getBucket(inputTokens int) string {
	switch {
	case inputTokens <= 256:
		return "0-256"
	case inputTokens <= 1024:
		return "257-1024"
	case inputTokens <= 4096:
		return "1025-4096"
	case inputTokens <= 8192:
		return "4097-8192"
	default:
		return "8192+"
	}
}
