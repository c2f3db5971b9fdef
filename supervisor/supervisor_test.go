package supervisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gasnetwork/agent/chain"
	"github.com/gasnetwork/agent/rpcclient"
)

func chainIDServer(t *testing.T, hexChainID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcclient.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		resp := rpcclient.Response{JSONRPC: "2.0", ID: req.ID}
		if req.Method == "eth_chainId" {
			data, _ := json.Marshal(hexChainID)
			resp.Result = data
		} else {
			resp.Error = &rpcclient.RPCError{Code: -32601, Message: "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewAcceptsMatchingChainID(t *testing.T) {
	srv := chainIDServer(t, "0x1") // 1, ethereum mainnet
	defer srv.Close()

	rpc := rpcclient.New(srv.URL, time.Second)
	key := chain.Key{System: chain.SystemEthereum, Network: chain.NetworkMainnet}
	s, err := New(context.Background(), key, rpc, rpc, nil, nil, 4, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.chainID != 1 {
		t.Errorf("got chainID %d, want 1", s.chainID)
	}
}

func TestNewRejectsMismatchedChainID(t *testing.T) {
	srv := chainIDServer(t, "0x2a") // 42, not ethereum mainnet's 1
	defer srv.Close()

	rpc := rpcclient.New(srv.URL, time.Second)
	key := chain.Key{System: chain.SystemEthereum, Network: chain.NetworkMainnet}
	if _, err := New(context.Background(), key, rpc, rpc, nil, nil, 4, nil, nil); err == nil {
		t.Error("expected error on chain-id mismatch")
	}
}

func TestHexEncode(t *testing.T) {
	got := hexEncode([]byte{0xde, 0xad, 0xbe, 0xef})
	want := "0xdeadbeef"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHexEncodeEmpty(t *testing.T) {
	if got := hexEncode(nil); got != "0x" {
		t.Errorf("got %q, want \"0x\"", got)
	}
}
