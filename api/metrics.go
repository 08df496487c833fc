// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/archon-network/archon/metrics"
)

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
)

// metricsResponseWriter is a wrapper around http.ResponseWriter that captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records a counter and a duration histogram per mounted
// route. Requests that miss every route are labeled UNKNOWN.
func metricsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		mrw := newMetricsResponseWriter(w)
		h.ServeHTTP(mrw, r)

		name := "UNKNOWN"
		if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
			name = route.GetName()
		}
		labels := map[string]string{
			"name":   name,
			"code":   strconv.Itoa(mrw.statusCode),
			"method": r.Method,
		}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		metricHTTPReqDuration().ObserveWithLabels(time.Since(now).Milliseconds(), labels)
	})
}
