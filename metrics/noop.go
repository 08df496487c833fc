// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noop is the default backend. Every meter it hands out discards its input.
type noop struct{}

var noopMeter = discard{}

func (noop) GetOrCreateCounter(string) Counter                         { return noopMeter }
func (noop) GetOrCreateCounterVec(string, []string) CounterVec         { return noopMeter }
func (noop) GetOrCreateGauge(string) Gauge                             { return noopMeter }
func (noop) GetOrCreateHistogram(string, []int64) Histogram            { return noopMeter }
func (noop) GetOrCreateHistogramVec(string, []string, []int64) HistogramVec {
	return noopMeter
}
func (noop) Handler() http.Handler { return nil }

type discard struct{}

func (discard) Add(int64)                                 {}
func (discard) Set(int64)                                 {}
func (discard) AddWithLabel(int64, map[string]string)     {}
func (discard) Observe(int64)                             {}
func (discard) ObserveWithLabels(int64, map[string]string) {}
