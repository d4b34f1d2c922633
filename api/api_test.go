// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/test/testnode"
)

func initAPIServer(t *testing.T, opts Options) *httptest.Server {
	n, err := testnode.NewDefaultNode()
	require.NoError(t, err)

	handler, closeSubs := New(n.Node, opts)
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
		n.Close()
	})
	return ts
}

func TestRoutes(t *testing.T) {
	ts := initAPIServer(t, Options{AllowedOrigins: "*", EnableMetrics: true, Limit: 10, SoloMode: true})

	for _, path := range []string{
		"/staking/pool",
		"/staking/accounts/" + testnode.Alice.String(),
		"/market/models",
		"/tokens/balances/" + testnode.Alice.String(),
		"/node/info",
	} {
		res, err := http.Get(ts.URL + path) //#nosec G107
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
	}

	res, err := http.Post(ts.URL+"/events", "application/json", bytes.NewReader([]byte("{}"))) //#nosec G107
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/unknown") //#nosec G107
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCompressAndCORS(t *testing.T) {
	ts := initAPIServer(t, Options{AllowedOrigins: "https://app.example", Limit: 10})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/staking/pool", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Origin", "https://app.example")
	res, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "gzip", res.Header.Get("Content-Encoding"))
	assert.Equal(t, "https://app.example", res.Header.Get("Access-Control-Allow-Origin"))

	zr, err := gzip.NewReader(res.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	var pool types.Pool
	require.NoError(t, json.Unmarshal(body, &pool))
	assert.Equal(t, testnode.Admin, pool.Admin)
}

func TestWebsocketThroughMiddlewares(t *testing.T) {
	ts := initAPIServer(t, Options{AllowedOrigins: "*", EnableMetrics: true, Limit: 10})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/events"
	conn, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	res.Body.Close()
	conn.Close()
}
