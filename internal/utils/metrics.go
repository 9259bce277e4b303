package utils

import (
	"sync"
	"time"
)

// Tracks performance metrics across the session
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	// Counts of toggle calls rejected by the dedup gate, per operation
	dedupRejections map[string]uint64

	sessionStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		operationTimes:   make(map[string][]int64),
		dedupRejections:  make(map[string]uint64),
		sessionStartTime: time.Now(),
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) IncrementDedupRejections(operationName string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.dedupRejections[operationName]++
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.operationTimes[operationName] = append(
		mc.operationTimes[operationName],
		duration.Nanoseconds(),
	)
}

func (mc *MetricsCollector) RequestCount() uint64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.requestCount
}

func (mc *MetricsCollector) ErrorCount() uint64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.errorCount
}

func (mc *MetricsCollector) DedupRejections(operationName string) uint64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.dedupRejections[operationName]
}

// AverageLatency returns the mean latency recorded for an operation,
// or zero when the operation has never been recorded.
func (mc *MetricsCollector) AverageLatency(operationName string) time.Duration {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	samples := mc.operationTimes[operationName]
	if len(samples) == 0 {
		return 0
	}
	var total int64
	for _, ns := range samples {
		total += ns
	}
	return time.Duration(total / int64(len(samples)))
}

func (mc *MetricsCollector) Uptime() time.Duration {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return time.Since(mc.sessionStartTime)
}
