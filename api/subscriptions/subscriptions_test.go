// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package subscriptions_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeshare/api/subscriptions"
	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/builtin"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/test/testnode"
)

func initSubscriptionServer(t *testing.T, origins []string) (*testnode.Node, *httptest.Server) {
	n, err := testnode.NewDefaultNode()
	require.NoError(t, err)

	router := mux.NewRouter()
	subs := subscriptions.New(n.Node, origins)
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		subs.Close()
		ts.Close()
		n.Close()
	})
	return n, ts
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/events" + query
}

func readEvent(t *testing.T, conn *websocket.Conn) *types.Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev types.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func TestSubscribeEvents(t *testing.T) {
	n, ts := initSubscriptionServer(t, nil)
	ctx := context.Background()

	conn, res, err := websocket.DefaultDialer.Dial(wsURL(ts, "?participant="+testnode.Alice.String()+"&kind=Staked&kind=Withdrawn"), nil)
	require.NoError(t, err)
	defer res.Body.Close()
	defer conn.Close()

	_, err = n.Approve(ctx, builtin.TokenAddress, testnode.Bob, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	_, err = n.Stake(ctx, testnode.Bob, cgfy.Tokens(10))
	require.NoError(t, err)
	_, err = n.Approve(ctx, builtin.TokenAddress, testnode.Alice, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	_, err = n.Stake(ctx, testnode.Alice, cgfy.Tokens(20))
	require.NoError(t, err)
	_, err = n.Withdraw(ctx, testnode.Alice, cgfy.Tokens(5))
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, events.Staked, ev.Kind)
	assert.Equal(t, uint64(4), ev.Period)
	assert.Equal(t, testnode.Alice, *ev.Participant)

	ev = readEvent(t, conn)
	assert.Equal(t, events.Withdrawn, ev.Kind)
	assert.Equal(t, uint64(5), ev.Period)
}

func TestSubscribeBadRequest(t *testing.T) {
	_, ts := initSubscriptionServer(t, nil)

	_, res, err := websocket.DefaultDialer.Dial(wsURL(ts, "?kind=Transfer"), nil)
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	_, res, err = websocket.DefaultDialer.Dial(wsURL(ts, "?participant=0x1"), nil)
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestOriginCheck(t *testing.T) {
	_, ts := initSubscriptionServer(t, []string{"https://allowed.example"})

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, res, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), header)
	assert.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	header.Set("Origin", "https://allowed.example")
	conn, res, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), header)
	require.NoError(t, err)
	res.Body.Close()
	conn.Close()
}
