// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakeshare/api/events"
	"github.com/vechain/stakeshare/api/market"
	"github.com/vechain/stakeshare/api/middleware"
	apinode "github.com/vechain/stakeshare/api/node"
	"github.com/vechain/stakeshare/api/staking"
	"github.com/vechain/stakeshare/api/subscriptions"
	"github.com/vechain/stakeshare/api/tokens"
	"github.com/vechain/stakeshare/log"
	"github.com/vechain/stakeshare/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	// Limit bounds the number of items a list query returns.
	Limit    uint64
	SoloMode bool
}

// New return api router and a func closing active subscriptions.
func New(n *node.Node, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(n).
		Mount(router, "/staking")
	market.New(n, opts.Limit).
		Mount(router, "/market")
	tokens.New(n).
		Mount(router, "/tokens")
	events.New(n, opts.Limit).
		Mount(router, "/events")
	apinode.New(n, opts.SoloMode).
		Mount(router, "/node")
	subs := subscriptions.New(n, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)
	}

	return handler.ServeHTTP, subs.Close
}
