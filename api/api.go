// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the REST and websocket surface of the staking
// ledger.
package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/archon-network/archon/api/nodes"
	"github.com/archon-network/archon/api/positions"
	"github.com/archon-network/archon/api/stats"
	"github.com/archon-network/archon/api/subscriptions"
	"github.com/archon-network/archon/api/tiers"
	"github.com/archon-network/archon/ledger"
	"github.com/archon-network/archon/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
}

// New returns the api handler and a close function terminating the
// hijacked websocket connections.
func New(led *ledger.Ledger, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	positions.New(led).
		Mount(router, "/positions")
	nodes.New(led).
		Mount(router, "/nodes")
	stats.New(led).
		Mount(router, "/stats")
	tiers.New(led).
		Mount(router, "/tiers")
	subs := subscriptions.New(led, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close
}
