// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/archon-network/archon/log"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".archon")
	}
	return ""
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, level)
	} else {
		useColor := isatty.IsTerminal(os.Stderr.Fd())
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return level
}

func startAPIServer(addr string, handler http.Handler) (*http.Server, string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: time.Second * 10,
	}
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			logger.Error("api server stopped", "err", err)
		}
	}()
	return srv, "http://" + listener.Addr().String() + "/", nil
}

func handleExitSignal() context.Context {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
