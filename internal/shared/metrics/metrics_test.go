package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var buf bytes.Buffer
	writeHistogram(&buf, "sample_ms", "sample", h.Snapshot())
	out := buf.String()
	for _, want := range []string{
		`sample_ms_bucket{le="10"} 1`,
		`sample_ms_bucket{le="100"} 2`,
		`sample_ms_bucket{le="+Inf"} 3`,
		`sample_ms_sum 555`,
		`sample_ms_count 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderIncludesDomainCounters(t *testing.T) {
	ObserveCache(true)
	ObserveKBSearch(12, true)
	IncSalaryBenchmark()

	out := Render()
	for _, name := range []string{"ai_cache_hits_total", "kb_searches_degraded_total", "salary_benchmarks_total", "kb_search_duration_ms_count"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}
