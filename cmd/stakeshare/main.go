// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeshare/eventdb"
	"github.com/vechain/stakeshare/genesis"
	"github.com/vechain/stakeshare/log"
	"github.com/vechain/stakeshare/lvldb"
	"github.com/vechain/stakeshare/node"
	"github.com/vechain/stakeshare/period"
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
		Name:      "StakeShare",
		Usage:     "Staking reward and revenue share node",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			cacheFlag,
			periodIntervalFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "single node with a manually advanced period clock, for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					genesisFlag,
					persistFlag,
					onDemandFlag,
					mineIntervalFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiLimitFlag,
					enableAPILogsFlag,
					apiSlowQueriesThresholdFlag,
					apiLog5xxErrorsFlag,
					verbosityFlag,
					jsonLogsFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	gen, srvs, err := prepare(ctx)
	if err != nil {
		return err
	}

	instanceDir, err := makeInstanceDir(ctx, gen)
	if err != nil {
		return err
	}
	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	eventDB, err := openEventDB(instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	genesisTime, err := loadGenesisTime(mainDB, time.Now())
	if err != nil {
		return err
	}
	clock := period.NewWall(nil, genesisTime, time.Duration(ctx.Uint64(periodIntervalFlag.Name))*time.Second)

	n, err := node.New(mainDB, gen, clock, eventDB, node.Options{})
	if err != nil {
		return err
	}

	return run(ctx, exitSignal, gen, n, instanceDir, srvs, false, func(ctx context.Context) error {
		clock.Run(ctx, func(p uint64) {
			logger.Debug("period started", "period", p)
		})
		return nil
	})
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	gen, srvs, err := prepare(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB      *lvldb.LevelDB
		eventDB     *eventdb.EventDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gen); err != nil {
			return err
		}
		if mainDB, err = openMainDB(ctx, instanceDir); err != nil {
			return err
		}
		if eventDB, err = openEventDB(instanceDir); err != nil {
			mainDB.Close()
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if eventDB, err = eventdb.NewMem(); err != nil {
			mainDB.Close()
			return err
		}
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing event database..."); eventDB.Close() }()

	clock := period.NewManual(0)
	n, err := node.New(mainDB, gen, clock, eventDB, node.Options{
		Automine: !ctx.Bool(onDemandFlag.Name),
		Faucet:   true,
	})
	if err != nil {
		return err
	}

	interval := time.Duration(ctx.Uint64(mineIntervalFlag.Name)) * time.Second
	return run(ctx, exitSignal, gen, n, instanceDir, srvs, true, func(ctx context.Context) error {
		if interval == 0 {
			<-ctx.Done()
			return nil
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				p, err := n.Mine(1)
				if err != nil {
					return err
				}
				logger.Debug("period mined", "period", p)
			}
		}
	})
}

// servers started ahead of the node, optional ones are nil.
type servers struct {
	metrics *server
	admin   *server
	apiLogs *atomic.Bool
}

// prepare sets up logging, loads the genesis and binds the optional servers.
func prepare(ctx *cli.Context) (*genesis.Genesis, *servers, error) {
	logLevel := initLogger(ctx)
	gen, err := selectGenesis(ctx)
	if err != nil {
		return nil, nil, err
	}
	srvs := &servers{apiLogs: &atomic.Bool{}}
	srvs.apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	if srvs.metrics, err = startMetricsServer(ctx); err != nil {
		return nil, nil, err
	}
	if srvs.admin, err = startAdminServer(ctx, logLevel, srvs.apiLogs); err != nil {
		return nil, nil, err
	}
	return gen, srvs, nil
}

// run serves the API and the optional servers next to the clock routine until exit.
func run(
	ctx *cli.Context,
	exitSignal context.Context,
	gen *genesis.Genesis,
	n *node.Node,
	instanceDir string,
	srvs *servers,
	solo bool,
	clockRoutine func(context.Context) error,
) error {
	apiSrv, closeSubs, err := startAPIServer(ctx, n, srvs.apiLogs, solo)
	if err != nil {
		return err
	}
	metricsURL, adminURL := "Disabled", "Disabled"
	if srvs.metrics != nil {
		metricsURL = srvs.metrics.URL() + "/metrics"
	}
	if srvs.admin != nil {
		adminURL = srvs.admin.URL() + "/admin"
	}
	printStartupMessage(os.Stdout, gen, n, instanceDir, apiSrv.URL(), metricsURL, adminURL)

	group, gctx := errgroup.WithContext(exitSignal)
	group.Go(apiSrv.Serve)
	for _, srv := range []*server{srvs.metrics, srvs.admin} {
		if srv != nil {
			group.Go(srv.Serve)
		}
	}
	group.Go(func() error { return clockRoutine(gctx) })
	group.Go(func() error {
		<-gctx.Done()
		logger.Info("stopping API server...")
		closeSubs()
		apiSrv.Shutdown()
		for _, srv := range []*server{srvs.metrics, srvs.admin} {
			if srv != nil {
				logger.Info("stopping server...", "name", srv.name)
				srv.Shutdown()
			}
		}
		return nil
	})
	return group.Wait()
}
