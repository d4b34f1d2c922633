// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeshare/admin"
	"github.com/vechain/stakeshare/api"
	"github.com/vechain/stakeshare/eventdb"
	"github.com/vechain/stakeshare/genesis"
	"github.com/vechain/stakeshare/kv"
	"github.com/vechain/stakeshare/log"
	"github.com/vechain/stakeshare/lvldb"
	"github.com/vechain/stakeshare/metrics"
	"github.com/vechain/stakeshare/node"
)

var (
	metaBucket     = kv.Bucket("meta/")
	keyGenesisTime = []byte("genesis-time")
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	if path := ctx.String(genesisFlag.Name); path != "" {
		gen, err := genesis.Load(path)
		if err != nil {
			return nil, errors.WithMessage(err, "load genesis")
		}
		return gen, nil
	}
	return genesis.NewDevnet(), nil
}

func makeInstanceDir(ctx *cli.Context, gen *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	id, err := gen.ID()
	if err != nil {
		return "", err
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id.Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir at '%v'", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(ctx *cli.Context, instanceDir string) (*lvldb.LevelDB, error) {
	path := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              ctx.Int(cacheFlag.Name),
		OpenFilesCacheCapacity: 256,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database at '%v'", path)
	}
	return db, nil
}

func openEventDB(instanceDir string) (*eventdb.EventDB, error) {
	path := filepath.Join(instanceDir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database at '%v'", path)
	}
	return db, nil
}

// loadGenesisTime returns the time period zero began, stamping now on first run.
func loadGenesisTime(store kv.Store, now time.Time) (time.Time, error) {
	meta := metaBucket.NewStore(store)
	data, err := meta.Get(keyGenesisTime)
	if err != nil {
		if !meta.IsNotFound(err) {
			return time.Time{}, err
		}
		data = binary.BigEndian.AppendUint64(nil, uint64(now.Unix()))
		if err := meta.Put(keyGenesisTime, data); err != nil {
			return time.Time{}, err
		}
	}
	if len(data) != 8 {
		return time.Time{}, errors.New("corrupted genesis time")
	}
	return time.Unix(int64(binary.BigEndian.Uint64(data)), 0), nil
}

func apiOptions(ctx *cli.Context, apiLogs *atomic.Bool, solo bool) api.Options {
	return api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		Limit:                ctx.Uint64(apiLimitFlag.Name),
		SoloMode:             solo,
	}
}

// server binds addr and serves handler until Shutdown.
type server struct {
	name string
	srv  *http.Server
	ln   net.Listener
}

func listen(name, addr string, handler http.Handler, timeout time.Duration) (*server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s addr '%v'", name, addr)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       timeout,
	}
	return &server{name: name, srv: srv, ln: ln}, nil
}

func (s *server) URL() string {
	return "http://" + s.ln.Addr().String()
}

func (s *server) Serve() error {
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrapf(err, "%s server", s.name)
	}
	return nil
}

func (s *server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		logger.Warn("server shutdown", "name", s.name, "err", err)
	}
}

func startAPIServer(ctx *cli.Context, n *node.Node, apiLogs *atomic.Bool, solo bool) (*server, func(), error) {
	handler, closeSubs := api.New(n, apiOptions(ctx, apiLogs, solo))
	timeout := time.Duration(ctx.Uint64(apiTimeoutFlag.Name)) * time.Millisecond
	var h http.Handler = handler
	if timeout > 0 {
		h = handleAPITimeout(handler, timeout)
	}
	srv, err := listen("api", ctx.String(apiAddrFlag.Name), h, 0)
	if err != nil {
		closeSubs()
		return nil, nil, err
	}
	return srv, closeSubs, nil
}

// handleAPITimeout bounds every non websocket request by timeout.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			h.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func startMetricsServer(ctx *cli.Context) (*server, error) {
	if !ctx.Bool(enableMetricsFlag.Name) {
		return nil, nil
	}
	metrics.InitializePrometheusMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	return listen("metrics", ctx.String(metricsAddrFlag.Name), mux, 5*time.Second)
}

func startAdminServer(ctx *cli.Context, logLevel *slog.LevelVar, apiLogs *atomic.Bool) (*server, error) {
	if !ctx.Bool(enableAdminFlag.Name) {
		return nil, nil
	}
	return listen("admin", ctx.String(adminAddrFlag.Name), admin.HTTPHandler(logLevel, apiLogs), 5*time.Second)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(w io.Writer, gen *genesis.Genesis, n *node.Node, dataDir, apiURL, metricsURL, adminURL string) {
	info := n.Info()
	fmt.Fprintf(w, `Starting %v
    Genesis     [ %v ]
    Admin       [ %v ]
    Emission    [ %v per period over [%v, %v) ]
    Period      [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
    Admin API   [ %v ]
`,
		fullVersion(),
		info.GenesisID,
		gen.Admin,
		(*big.Int)(gen.RewardPerPeriod),
		gen.StartPeriod,
		gen.EndPeriod,
		info.Period,
		dataDir,
		apiURL,
		metricsURL,
		adminURL,
	)
}

// copy from go-ethereum
func defaultDataDir() string {
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakeshare")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakeshare")
		default:
			return filepath.Join(home, ".org.vechain.stakeshare")
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
