package geoquad

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter  prometheus.Counter
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(duration time.Duration, accepted bool) {
//	    p.insertCounter.Inc()
//	    // ... record rejection state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	// accepted is false when the record was rejected.
	RecordInsert(duration time.Duration, accepted bool)

	// RecordIngest is called after each bulk ingest.
	// count is the number of records attempted, rejected is the number
	// the tree refused, duration is the total time taken.
	RecordIngest(count, rejected int, duration time.Duration)

	// RecordQuery is called after each query operation.
	RecordQuery(results int, duration time.Duration)

	// RecordSave is called after each snapshot save.
	RecordSave(duration time.Duration, err error)

	// RecordLoad is called after each snapshot load.
	RecordLoad(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, bool)        {}
func (NoopMetricsCollector) RecordIngest(int, int, time.Duration)    {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration)          {}
func (NoopMetricsCollector) RecordSave(time.Duration, error)         {}
func (NoopMetricsCollector) RecordLoad(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertRejected   atomic.Int64
	InsertTotalNanos atomic.Int64
	IngestCount      atomic.Int64
	IngestItems      atomic.Int64
	IngestRejected   atomic.Int64
	QueryCount       atomic.Int64
	QueryResults     atomic.Int64
	QueryTotalNanos  atomic.Int64
	SaveCount        atomic.Int64
	SaveErrors       atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, accepted bool) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if !accepted {
		b.InsertRejected.Add(1)
	}
}

// RecordIngest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIngest(count, rejected int, duration time.Duration) {
	b.IngestCount.Add(1)
	b.IngestItems.Add(int64(count))
	b.IngestRejected.Add(int64(rejected))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(results int, duration time.Duration) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(duration time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// AverageQueryTime returns the mean query duration, or zero when no
// query has been recorded.
func (b *BasicMetricsCollector) AverageQueryTime() time.Duration {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(b.QueryTotalNanos.Load() / count)
}
