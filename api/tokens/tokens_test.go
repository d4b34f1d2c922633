// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package tokens_test

import (
	"bytes"
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

	"github.com/vechain/stakeshare/api/tokens"
	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/builtin"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/node"
	"github.com/vechain/stakeshare/test/testnode"
)

func initTokensServer(t *testing.T, opts node.Options) *httptest.Server {
	n, err := testnode.NewNodeBuilder().WithOptions(opts).Build()
	require.NoError(t, err)

	router := mux.NewRouter()
	tokens.New(n.Node).Mount(router, "/tokens")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		n.Close()
	})
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func amount(n int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(cgfy.Tokens(n))
}

func units(n int64) string {
	return cgfy.Tokens(n).String()
}

func balances(t *testing.T, ts *httptest.Server, addr cgfy.Address) map[string]string {
	body, code := httpGet(t, ts.URL+"/tokens/balances/"+addr.String())
	require.Equal(t, http.StatusOK, code, string(body))
	var bals []types.Balance
	require.NoError(t, json.Unmarshal(body, &bals))
	out := make(map[string]string)
	for _, b := range bals {
		out[b.Symbol] = (*big.Int)(b.Balance).String()
	}
	return out
}

func TestTokens(t *testing.T) {
	ts := initTokensServer(t, node.Options{Automine: true})
	tokenURL := ts.URL + "/tokens/" + builtin.TokenAddress.String()

	bals := balances(t, ts, testnode.Alice)
	assert.Equal(t, units(100), bals["CGFY"])
	assert.Equal(t, units(10), bals["COIN"])

	body, code := httpPost(t, tokenURL+"/transfer", tokens.TransferRequest{From: testnode.Alice, To: testnode.Bob, Amount: amount(40)})
	require.Equal(t, http.StatusOK, code, string(body))
	assert.Equal(t, units(60), balances(t, ts, testnode.Alice)["CGFY"])
	assert.Equal(t, units(140), balances(t, ts, testnode.Bob)["CGFY"])

	body, code = httpPost(t, tokenURL+"/approve", tokens.ApproveRequest{Owner: testnode.Alice, Spender: builtin.StakerAddress, Amount: amount(25)})
	require.Equal(t, http.StatusOK, code, string(body))

	body, code = httpGet(t, tokenURL+"/allowance?owner="+testnode.Alice.String()+"&spender="+builtin.StakerAddress.String())
	require.Equal(t, http.StatusOK, code, string(body))
	var allowance tokens.Allowance
	require.NoError(t, json.Unmarshal(body, &allowance))
	assert.Equal(t, units(25), (*big.Int)(allowance.Allowance).String())
	assert.Equal(t, builtin.TokenAddress, allowance.Token)

	_, code = httpPost(t, tokenURL+"/transfer", tokens.TransferRequest{From: testnode.Alice, To: testnode.Bob, Amount: amount(1000)})
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpPost(t, tokenURL+"/mint", tokens.MintRequest{To: testnode.Alice, Amount: amount(1)})
	assert.Equal(t, http.StatusForbidden, code)

	_, code = httpGet(t, ts.URL+"/tokens/"+testnode.Bob.String()+"/allowance?owner="+testnode.Alice.String()+"&spender="+testnode.Bob.String())
	assert.Equal(t, http.StatusNotFound, code)

	_, code = httpGet(t, tokenURL+"/allowance?owner=bad&spender="+testnode.Bob.String())
	assert.Equal(t, http.StatusBadRequest, code)

	_, code = httpGet(t, ts.URL+"/tokens/balances/0x01")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFaucet(t *testing.T) {
	ts := initTokensServer(t, node.Options{Automine: true, Faucet: true})

	body, code := httpPost(t, ts.URL+"/tokens/"+builtin.CoinAddress.String()+"/mint", tokens.MintRequest{To: testnode.Bob, Amount: amount(5)})
	require.Equal(t, http.StatusOK, code, string(body))
	var receipt types.Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.Equal(t, uint64(1), receipt.Period)

	assert.Equal(t, units(15), balances(t, ts, testnode.Bob)["COIN"])
}
