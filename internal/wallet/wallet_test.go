package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	wei, err := ParseEther("0.01")
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000", wei.Dec())

	wei, err = ParseEther("2")
	require.NoError(t, err)
	assert.Equal(t, "0x1bc16d674ec80000", wei.Hex())

	wei, err = ParseEther("0")
	require.NoError(t, err)
	assert.True(t, wei.IsZero())

	for _, bad := range []string{"", "-1", "abc", "1.2.3", "0.0000000000000000001"} {
		_, err := ParseEther(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "2", FormatEther(uint256.NewInt(2_000_000_000_000_000_000)))
	assert.Equal(t, "0.015", FormatEther(uint256.NewInt(15_000_000_000_000_000)))
	assert.Equal(t, "0", FormatEther(nil))
}

func TestParseQuantity(t *testing.T) {
	v, err := ParseQuantity("0x00")
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = ParseQuantity("0x5208")
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), v.Uint64())

	_, err = ParseQuantity("0x")
	assert.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	got, err := NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, checksummed, got)

	got, err = NormalizeAddress(checksummed)
	require.NoError(t, err)
	assert.Equal(t, checksummed, got)

	_, err = NormalizeAddress("0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.Error(t, err)
	_, err = NormalizeAddress("0x123")
	assert.Error(t, err)
	_, err = NormalizeAddress("0xzzzeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.Error(t, err)
}

func TestKeccak256Hex(t *testing.T) {
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256Hex(nil))
}

func newRPCServer(t *testing.T, handler func(method string, params []json.RawMessage) (any, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestProvider_Calls(t *testing.T) {
	var sent TxRequest
	srv := newRPCServer(t, func(method string, params []json.RawMessage) (any, *RPCError) {
		switch method {
		case "eth_requestAccounts":
			return []string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, nil
		case "eth_getBalance":
			return "0xde0b6b3a7640000", nil
		case "eth_sendTransaction":
			_ = json.Unmarshal(params[0], &sent)
			return "0xabc", nil
		case "eth_getTransactionReceipt":
			return map[string]string{"transactionHash": "0xabc", "status": "0x1"}, nil
		}
		return nil, &RPCError{Code: -32601, Message: "method not found"}
	})
	defer srv.Close()

	p := NewProvider(srv.URL)
	ctx := context.Background()

	accounts, err := p.RequestAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	balance, err := p.Balance(ctx, accounts[0])
	require.NoError(t, err)
	assert.Equal(t, "1", FormatEther(balance))

	hash, err := p.SendTransaction(ctx, TxRequest{From: "0xa", To: "0xb", Value: "0x1"})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", hash)
	assert.Equal(t, TransferGas, sent.Gas)

	receipt, err := p.TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.True(t, receipt.Succeeded())

	_, err = p.Accounts(ctx)
	var rpcErr *RPCError
	assert.ErrorAs(t, err, &rpcErr)
}

func TestProvider_PendingReceiptIsNil(t *testing.T) {
	srv := newRPCServer(t, func(string, []json.RawMessage) (any, *RPCError) {
		return nil, nil
	})
	defer srv.Close()

	receipt, err := NewProvider(srv.URL).TransactionReceipt(context.Background(), "0x1")
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestProvider_NotConfigured(t *testing.T) {
	_, err := NewProvider("").Accounts(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	var p *Provider
	assert.False(t, p.Configured())
}
