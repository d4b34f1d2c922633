// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package market_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeshare/api/market"
	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/builtin"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/test/testnode"
)

func initMarketServer(t *testing.T) (*testnode.Node, *httptest.Server) {
	n, err := testnode.NewDefaultNode()
	require.NoError(t, err)

	router := mux.NewRouter()
	market.New(n.Node, 10).Mount(router, "/market")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		n.Close()
	})
	return n, ts
}

func httpDo(t *testing.T, method, url string, obj any) ([]byte, int) {
	var rd io.Reader
	if obj != nil {
		data, err := json.Marshal(obj)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func price(n int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(cgfy.Tokens(n))
}

func upload(t *testing.T, ts *httptest.Server, name string) uint64 {
	body, code := httpDo(t, http.MethodPost, ts.URL+"/market/models", market.UploadRequest{
		Creator: testnode.Alice,
		Name:    name,
		URL:     "ipfs://" + name,
		Price:   price(1),
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var res market.UploadResult
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Receipt.Events, 1)
	assert.Equal(t, events.ModelUploaded, res.Receipt.Events[0].Kind)
	return res.ID
}

func TestUploadAndBuy(t *testing.T) {
	n, ts := initMarketServer(t)
	ctx := context.Background()

	// alice stakes so the cut is distributed
	_, err := n.Approve(ctx, builtin.TokenAddress, testnode.Alice, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	_, err = n.Stake(ctx, testnode.Alice, cgfy.Tokens(100))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), upload(t, ts, "first"))
	assert.Equal(t, uint64(2), upload(t, ts, "second"))

	body, code := httpDo(t, http.MethodPost, ts.URL+"/market/models/2/buy", market.BuyRequest{Buyer: testnode.Bob, Value: price(1)})
	require.Equal(t, http.StatusOK, code, string(body))
	var receipt types.Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	kinds := make([]events.Kind, 0, len(receipt.Events))
	for _, ev := range receipt.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.ElementsMatch(t, []events.Kind{events.RevShareNotified, events.ModelPurchased}, kinds)

	pos, err := n.Position(testnode.Alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5e16).String(), pos.PendingRevShare.String())

	body, code = httpDo(t, http.MethodGet, ts.URL+"/market/models/2", nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var model types.Model
	require.NoError(t, json.Unmarshal(body, &model))
	assert.Equal(t, "second", model.Name)
	assert.Equal(t, uint64(1), model.Purchases)
	assert.Equal(t, testnode.Alice, model.Creator)

	body, code = httpDo(t, http.MethodGet, ts.URL+"/market/models?offset=1", nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var models []types.Model
	require.NoError(t, json.Unmarshal(body, &models))
	require.Len(t, models, 1)
	assert.Equal(t, uint64(2), models[0].ID)
}

func TestMarketErrors(t *testing.T) {
	_, ts := initMarketServer(t)
	upload(t, ts, "model")

	_, code := httpDo(t, http.MethodGet, ts.URL+"/market/models/9", nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, code = httpDo(t, http.MethodGet, ts.URL+"/market/models/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpDo(t, http.MethodGet, ts.URL+"/market/models?limit=11", nil)
	assert.Equal(t, http.StatusForbidden, code)

	_, code = httpDo(t, http.MethodPost, ts.URL+"/market/models/1/buy", market.BuyRequest{Buyer: testnode.Bob, Value: price(2)})
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpDo(t, http.MethodPost, ts.URL+"/market/models/9/buy", market.BuyRequest{Buyer: testnode.Bob, Value: price(1)})
	assert.Equal(t, http.StatusNotFound, code)

	_, code = httpDo(t, http.MethodPost, ts.URL+"/market/models", market.UploadRequest{Creator: testnode.Alice, Name: "", Price: price(1)})
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpDo(t, http.MethodPost, ts.URL+"/market/models", market.UploadRequest{Creator: testnode.Alice, Name: "free"})
	assert.Equal(t, http.StatusBadRequest, code)
}
