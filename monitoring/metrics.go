package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType is the Prometheus type of a metric.
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// Metric names recorded by the service.
const (
	MetricPredictions            = "healthpredict_predictions_total"
	MetricPredictionsUnavailable = "healthpredict_predictions_unavailable_total"
	MetricPredictionsFailed      = "healthpredict_predictions_failed_total"
	MetricArtifactChanges        = "healthpredict_artifact_changes_total"
	MetricModelsLoaded           = "healthpredict_models_loaded"
	MetricCacheEntries           = "healthpredict_prediction_cache_entries"
)

// Metric is the latest value of one series.
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Help      string            `json:"help,omitempty"`
}

// MetricsCollector keeps the current value of every counter and gauge.
type MetricsCollector struct {
	metrics     map[string]*Metric
	metricsLock sync.RWMutex

	startTime time.Time
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics:   make(map[string]*Metric),
		startTime: time.Now(),
	}
}

// IncrCounter adds value to a counter series.
func (mc *MetricsCollector) IncrCounter(name string, value float64, labels map[string]string) {
	if mc == nil {
		return
	}
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	metric := mc.series(name, MetricTypeCounter, labels)
	metric.Value += value
	metric.Timestamp = time.Now()
}

// SetGauge replaces the value of a gauge series.
func (mc *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	if mc == nil {
		return
	}
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	metric := mc.series(name, MetricTypeGauge, labels)
	metric.Value = value
	metric.Timestamp = time.Now()
}

// Value returns the current value of a series, or 0 if it was never set.
func (mc *MetricsCollector) Value(name string, labels map[string]string) float64 {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	if metric, ok := mc.metrics[seriesKey(name, labels)]; ok {
		return metric.Value
	}
	return 0
}

func (mc *MetricsCollector) series(name string, metricType MetricType, labels map[string]string) *Metric {
	key := seriesKey(name, labels)
	metric, ok := mc.metrics[key]
	if !ok {
		metric = &Metric{Name: name, Type: metricType, Labels: labels}
		mc.metrics[key] = metric
	}
	return metric
}

// Snapshot returns copies of all series sorted by name and labels.
func (mc *MetricsCollector) Snapshot() []Metric {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	keys := make([]string, 0, len(mc.metrics))
	for key := range mc.metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	snapshot := make([]Metric, 0, len(keys))
	for _, key := range keys {
		snapshot = append(snapshot, *mc.metrics[key])
	}
	return snapshot
}

// ExportPrometheus renders all series in the Prometheus text format.
func (mc *MetricsCollector) ExportPrometheus() string {
	var b strings.Builder
	seen := make(map[string]bool)
	for _, metric := range mc.Snapshot() {
		if !seen[metric.Name] {
			seen[metric.Name] = true
			fmt.Fprintf(&b, "# TYPE %s %s\n", metric.Name, metric.Type)
		}
		fmt.Fprintf(&b, "%s %s\n", seriesKey(metric.Name, metric.Labels), formatValue(metric.Value))
	}
	return b.String()
}

// GetUptime returns the time since the collector was created.
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

// GetSystemStats reports runtime figures alongside uptime.
func (mc *MetricsCollector) GetSystemStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"uptime":     mc.GetUptime().String(),
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"alloc":      m.Alloc,
			"heap_inuse": m.HeapInuse,
			"gc_count":   m.NumGC,
		},
		"num_cpu": runtime.NumCPU(),
	}
}

func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = fmt.Sprintf("%s=%q", key, labels[key])
	}
	return name + "{" + strings.Join(pairs, ",") + "}"
}

func formatValue(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
}
