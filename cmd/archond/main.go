// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/archon-network/archon/admin"
	"github.com/archon-network/archon/api"
	"github.com/archon-network/archon/authority"
	"github.com/archon-network/archon/custody"
	"github.com/archon-network/archon/epoch"
	"github.com/archon-network/archon/health"
	"github.com/archon-network/archon/kv"
	"github.com/archon-network/archon/ledger"
	"github.com/archon-network/archon/log"
	"github.com/archon-network/archon/metrics"
	"github.com/archon-network/archon/storage"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "archond",
		Usage:     "Archon staking ledger daemon",
		Copyright: "2025 The Archon Network developers",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	configPath := ctx.String(configFlag.Name)
	if configPath == "" {
		fatal("--config is required")
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		fatal(err)
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal("create data dir:", err)
	}
	store, err := kv.NewStore(dataDir, 128)
	if err != nil {
		fatal("open database:", err)
	}
	defer func() { logger.Info("closing database..."); store.Close() }()

	clock := epoch.NewClock(cfg.Epoch.Start, cfg.EpochDuration())
	auth := authority.NewStatic(cfg.AdminAddresses(), cfg.OpenRegistration)
	led := ledger.New(storage.NewContext(store), clock, custody.NewMemVault(), auth)

	if err := seedTiers(led, cfg); err != nil {
		fatal("seed tiers:", err)
	}

	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, health.New(led))
		if err != nil {
			fatal("start admin server:", err)
		}
		defer func() { logger.Info("stopping admin server..."); stop() }()
		logger.Info("admin server started", "url", url)
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheus()
		srv, url, err := startAPIServer(ctx.String(metricsAddrFlag.Name), metrics.HTTPHandler())
		if err != nil {
			fatal("start metrics server:", err)
		}
		defer func() { logger.Info("stopping metrics server..."); srv.Shutdown(context.Background()) }()
		logger.Info("metrics server started", "url", url)
	}

	handler, apiCloser := api.New(led, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer apiCloser()

	apiSrv, apiURL, err := startAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		fatal("start API server:", err)
	}
	defer func() { logger.Info("stopping API server..."); apiSrv.Shutdown(context.Background()) }()

	printStartupMessage(cfg, clock, dataDir, apiURL)

	<-handleExitSignal().Done()
	return nil
}

// seedTiers loads the configured lock tiers into an empty registry. A
// restart with tiers already present leaves the registry untouched so
// ids stay stable.
func seedTiers(led *ledger.Ledger, cfg *Config) error {
	existing, err := led.Tiers().List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, t := range cfg.Tiers {
		min := (*big.Int)(&t.MinStakingAmount)
		if _, err := led.Tiers().Add(min, t.LengthEpochs, t.WeightBps); err != nil {
			return err
		}
	}
	return nil
}

func printStartupMessage(cfg *Config, clock *epoch.Clock, dataDir, apiURL string) {
	fmt.Printf(`Starting %v
    Network      [ epochs of %v starting %v ]
    Current      [ epoch %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`,
		fullVersion(),
		cfg.EpochDuration(),
		time.Unix(int64(cfg.Epoch.Start), 0).UTC().Format(time.RFC3339),
		clock.Now(),
		dataDir,
		apiURL)
}
