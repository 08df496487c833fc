// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator-facing endpoints kept off the
// public API: runtime log level control and health checks.
package admin

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/archon-network/archon/health"
)

// HTTPHandler routes the admin endpoints.
func HTTPHandler(logLevel *slog.LevelVar, checker *health.Health) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/admin/loglevel", getLogLevelHandler(logLevel)).Methods(http.MethodGet)
	router.HandleFunc("/admin/loglevel", postLogLevelHandler(logLevel)).Methods(http.MethodPost)
	router.HandleFunc("/admin/health", healthHandler(checker)).Methods(http.MethodGet)
	return handlers.CompressHandler(router)
}

// StartServer serves the admin endpoints on addr and returns the base
// URL plus a stop function.
func StartServer(addr string, logLevel *slog.LevelVar, checker *health.Health) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}

	srv := &http.Server{
		Handler:           HTTPHandler(logLevel, checker),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		srv.Serve(listener)
	}()
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		wg.Wait()
	}, nil
}
