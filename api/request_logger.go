// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/archon-network/archon/log"
)

// RequestLoggerHandler logs every request with its body, status and
// duration. The body is re-buffered so downstream handlers can still read
// it.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var bodyBytes []byte
		var err error
		if r.Body != nil {
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				return // don't pass bad request to the next handler
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		start := time.Now()
		mrw := newMetricsResponseWriter(w)
		handler.ServeHTTP(mrw, r)

		logger.Info("api request",
			"uri", r.URL.String(),
			"method", r.Method,
			"body", string(bodyBytes),
			"status", mrw.statusCode,
			"duration", time.Since(start),
		)
	})
}
