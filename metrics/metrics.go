// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics provides global access to a set of meters. It wraps a
// Prometheus backend behind a no-op default, so instrumented code carries no
// cost until metrics are enabled at startup.
package metrics

import (
	"net/http"
	"sync"
)

var service Metrics = noop{}

// Metrics is the meter factory implemented by the backends.
type Metrics interface {
	GetOrCreateCounter(name string) Counter
	GetOrCreateCounterVec(name string, labels []string) CounterVec
	GetOrCreateGauge(name string) Gauge
	GetOrCreateHistogram(name string, buckets []int64) Histogram
	GetOrCreateHistogramVec(name string, labels []string, buckets []int64) HistogramVec
	Handler() http.Handler
}

// HTTPHandler returns the handler serving the metrics endpoint. Nil while
// the no-op backend is active.
func HTTPHandler() http.Handler {
	return service.Handler()
}

// BucketHTTPReqs is the default bucket layout for request durations, in ms.
var BucketHTTPReqs = []int64{
	0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
	150, 200, 300, 400, 500, 750, 1000,
	1500, 2000, 3000, 4000, 5000, 10000,
}

// Counter is a monotonically increasing value.
type Counter interface {
	Add(int64)
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	AddWithLabel(int64, map[string]string)
}

// Gauge is a value that can go up and down.
type Gauge interface {
	Add(int64)
	Set(int64)
}

// Histogram aggregates reported measurements into buckets.
type Histogram interface {
	Observe(int64)
}

// HistogramVec is a Histogram with labels.
type HistogramVec interface {
	ObserveWithLabels(int64, map[string]string)
}

func GetOrCreateCounter(name string) Counter { return service.GetOrCreateCounter(name) }

func GetOrCreateCounterVec(name string, labels []string) CounterVec {
	return service.GetOrCreateCounterVec(name, labels)
}

func GetOrCreateGauge(name string) Gauge { return service.GetOrCreateGauge(name) }

func GetOrCreateHistogram(name string, buckets []int64) Histogram {
	return service.GetOrCreateHistogram(name, buckets)
}

func GetOrCreateHistogramVec(name string, labels []string, buckets []int64) HistogramVec {
	return service.GetOrCreateHistogramVec(name, labels, buckets)
}

// lazyLoad defers meter creation past backend selection, so meters can be
// declared as package vars before InitializePrometheus runs.
func lazyLoad[T any](f func() T) func() T {
	var (
		once   sync.Once
		result T
	)
	return func() T {
		once.Do(func() { result = f() })
		return result
	}
}

func LazyLoadCounter(name string) func() Counter {
	return lazyLoad(func() Counter { return GetOrCreateCounter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CounterVec {
	return lazyLoad(func() CounterVec { return GetOrCreateCounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() Gauge {
	return lazyLoad(func() Gauge { return GetOrCreateGauge(name) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVec {
	return lazyLoad(func() HistogramVec { return GetOrCreateHistogramVec(name, labels, buckets) })
}
