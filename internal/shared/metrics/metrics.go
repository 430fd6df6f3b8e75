package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	contractStartedTotal   atomic.Uint64
	contractCompletedTotal atomic.Uint64
	contractFailedTotal    atomic.Uint64

	salaryBenchmarksTotal atomic.Uint64
	jobMatchesTotal       atomic.Uint64
	cacheHitsTotal        atomic.Uint64
	cacheMissesTotal      atomic.Uint64

	queueReceivedTotal      atomic.Uint64
	queueUnrecoverableTotal atomic.Uint64
	queueRetriedTotal       atomic.Uint64

	kbSearchesTotal         atomic.Uint64
	kbSearchesDegradedTotal atomic.Uint64

	contractDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
	kbSearchDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500})
)

func IncContractStarted()   { contractStartedTotal.Add(1) }
func IncContractCompleted() { contractCompletedTotal.Add(1) }
func IncContractFailed()    { contractFailedTotal.Add(1) }
func IncSalaryBenchmark()   { salaryBenchmarksTotal.Add(1) }
func IncJobMatch()          { jobMatchesTotal.Add(1) }

// Queue worker outcomes: received, dropped as unparseable, left for redelivery.
func IncQueueReceived()      { queueReceivedTotal.Add(1) }
func IncQueueUnrecoverable() { queueUnrecoverableTotal.Add(1) }
func IncQueueRetried()       { queueRetriedTotal.Add(1) }

// ObserveCache records a cache lookup outcome.
func ObserveCache(hit bool) {
	if hit {
		cacheHitsTotal.Add(1)
		return
	}
	cacheMissesTotal.Add(1)
}

// ObserveKBSearch records a hybrid search; degraded means one retrieval leg failed.
func ObserveKBSearch(durationMs float64, degraded bool) {
	kbSearchesTotal.Add(1)
	if degraded {
		kbSearchesDegradedTotal.Add(1)
	}
	kbSearchDuration.Observe(clamp(durationMs))
}

// ObserveContractDurationMs records an analysis duration in milliseconds.
func ObserveContractDurationMs(value float64) {
	contractDuration.Observe(clamp(value))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "contract_analysis_started_total", "Total contract analyses started", contractStartedTotal.Load())
	writeCounter(&buf, "contract_analysis_completed_total", "Total contract analyses completed", contractCompletedTotal.Load())
	writeCounter(&buf, "contract_analysis_failed_total", "Total contract analyses failed", contractFailedTotal.Load())
	writeCounter(&buf, "salary_benchmarks_total", "Total salary benchmarks served", salaryBenchmarksTotal.Load())
	writeCounter(&buf, "job_matches_total", "Total job match requests served", jobMatchesTotal.Load())
	writeCounter(&buf, "ai_cache_hits_total", "AI response cache hits", cacheHitsTotal.Load())
	writeCounter(&buf, "ai_cache_misses_total", "AI response cache misses", cacheMissesTotal.Load())
	writeCounter(&buf, "queue_messages_received_total", "Queue messages received by the worker", queueReceivedTotal.Load())
	writeCounter(&buf, "queue_messages_unrecoverable_total", "Queue messages deleted without processing", queueUnrecoverableTotal.Load())
	writeCounter(&buf, "queue_messages_retried_total", "Queue messages left for redelivery", queueRetriedTotal.Load())
	writeCounter(&buf, "kb_searches_total", "Knowledge base hybrid searches", kbSearchesTotal.Load())
	writeCounter(&buf, "kb_searches_degraded_total", "Hybrid searches served by a single retrieval leg", kbSearchesDegradedTotal.Load())
	writeHistogram(&buf, "contract_analysis_duration_ms", "Contract analysis duration in milliseconds", contractDuration.Snapshot())
	writeHistogram(&buf, "kb_search_duration_ms", "Hybrid search duration in milliseconds", kbSearchDuration.Snapshot())
	return buf.String()
}

// histogram keeps per-bucket counts; Render accumulates them.
type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
