package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// rpcStub answers JSON-RPC calls by method name.
func rpcStub(t *testing.T, results map[string]any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     any    `json:"id"`
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected method %s", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func mustEncode(t *testing.T, raw []byte) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(raw)
}

func TestRPCTransportReads(t *testing.T) {
	hash := solana.Hash{9, 9, 9}
	owner := solana.NewWallet().PublicKey()

	srv := rpcStub(t, map[string]any{
		"getLatestBlockhash": map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   map[string]any{"blockhash": hash.String(), "lastValidBlockHeight": 100},
		},
		"getAccountInfo": map[string]any{
			"context": map[string]any{"slot": 1},
			"value": map[string]any{
				"data":       []string{mustEncode(t, []byte{1, 2, 3}), "base64"},
				"executable": false,
				"lamports":   1000,
				"owner":      owner.String(),
				"rentEpoch":  0,
			},
		},
	})
	defer srv.Close()

	transport := NewRPCTransport(srv.URL)

	got, err := transport.LatestBlockhash(context.Background())
	require.NoError(t, err)
	require.Equal(t, hash, got)

	data, err := transport.AccountData(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestRPCTransportMissingAccount(t *testing.T) {
	srv := rpcStub(t, map[string]any{
		"getAccountInfo": map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   nil,
		},
	})
	defer srv.Close()

	_, err := NewRPCTransport(srv.URL).AccountData(context.Background(), solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRPCTransportMissingTransaction(t *testing.T) {
	srv := rpcStub(t, map[string]any{"getTransaction": nil})
	defer srv.Close()

	_, err := NewRPCTransport(srv.URL).TransactionLogs(context.Background(), solana.Signature{1})
	require.ErrorIs(t, err, ErrTransactionNotFound)
}
