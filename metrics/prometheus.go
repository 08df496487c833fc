// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/archon-network/archon/log"
)

const namespace = "archon"

// InitializePrometheus switches the package to the Prometheus backend.
// Meters created before the switch stay no-op; declare meters lazily.
func InitializePrometheus() {
	if _, ok := service.(*promBackend); !ok {
		service = &promBackend{}
	}
}

type promBackend struct {
	counters      sync.Map
	counterVecs   sync.Map
	gauges        sync.Map
	histograms    sync.Map
	histogramVecs sync.Map
}

func register(c prometheus.Collector, name string) {
	if err := prometheus.Register(c); err != nil {
		log.Warn("unable to register metric", "name", name, "err", err)
	}
}

func (b *promBackend) GetOrCreateCounter(name string) Counter {
	if m, ok := b.counters.Load(name); ok {
		return m.(Counter)
	}
	meter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
	register(meter, name)
	wrapped := &promCounter{meter}
	b.counters.Store(name, wrapped)
	return wrapped
}

func (b *promBackend) GetOrCreateCounterVec(name string, labels []string) CounterVec {
	if m, ok := b.counterVecs.Load(name); ok {
		return m.(CounterVec)
	}
	meter := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
	register(meter, name)
	wrapped := &promCounterVec{meter}
	b.counterVecs.Store(name, wrapped)
	return wrapped
}

func (b *promBackend) GetOrCreateGauge(name string) Gauge {
	if m, ok := b.gauges.Load(name); ok {
		return m.(Gauge)
	}
	meter := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
	register(meter, name)
	wrapped := &promGauge{meter}
	b.gauges.Store(name, wrapped)
	return wrapped
}

func (b *promBackend) GetOrCreateHistogram(name string, buckets []int64) Histogram {
	if m, ok := b.histograms.Load(name); ok {
		return m.(Histogram)
	}
	meter := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets(buckets),
	})
	register(meter, name)
	wrapped := &promHistogram{meter}
	b.histograms.Store(name, wrapped)
	return wrapped
}

func (b *promBackend) GetOrCreateHistogramVec(name string, labels []string, buckets []int64) HistogramVec {
	if m, ok := b.histogramVecs.Load(name); ok {
		return m.(HistogramVec)
	}
	meter := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Buckets:   floatBuckets(buckets),
	}, labels)
	register(meter, name)
	wrapped := &promHistogramVec{meter}
	b.histogramVecs.Store(name, wrapped)
	return wrapped
}

func (b *promBackend) Handler() http.Handler {
	return promhttp.Handler()
}

func floatBuckets(buckets []int64) []float64 {
	var out []float64
	for _, b := range buckets {
		out = append(out, float64(b))
	}
	return out
}

type promCounter struct{ c prometheus.Counter }

func (p *promCounter) Add(i int64) { p.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (p *promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	p.c.With(labels).Add(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (p *promGauge) Add(i int64) { p.g.Add(float64(i)) }
func (p *promGauge) Set(i int64) { p.g.Set(float64(i)) }

type promHistogram struct{ h prometheus.Histogram }

func (p *promHistogram) Observe(i int64) { p.h.Observe(float64(i)) }

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (p *promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	p.h.With(labels).Observe(float64(i))
}
