package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler func(req Request) (interface{}, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		result, rpcErr := handler(req)
		resp := Response{JSONRPC: "2.0", ID: req.ID}
		if rpcErr != nil {
			resp.Error = rpcErr
		} else {
			data, _ := json.Marshal(result)
			resp.Result = data
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestChainID(t *testing.T) {
	srv := newTestServer(t, func(req Request) (interface{}, *RPCError) {
		if req.Method != "eth_chainId" {
			t.Errorf("got method %q", req.Method)
		}
		return "0x2105", nil // 8453, Base
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	id, err := c.ChainID(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 8453 {
		t.Errorf("got %d, want 8453", id)
	}
}

func TestCallPropagatesRPCError(t *testing.T) {
	srv := newTestServer(t, func(req Request) (interface{}, *RPCError) {
		return nil, &RPCError{Code: -32000, Message: "boom"}
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.ChainID(context.Background()); err == nil {
		t.Error("expected error from RPC error object")
	}
}

func TestCallPropagatesNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.ChainID(context.Background()); err == nil {
		t.Error("expected error from non-2xx status")
	}
}

func TestGasPrice(t *testing.T) {
	srv := newTestServer(t, func(req Request) (interface{}, *RPCError) {
		return "0x3b9aca00", nil
	})
	defer srv.Close()

	c := New(srv.URL, time.Second)
	price, err := c.GasPrice(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != "0x3b9aca00" {
		t.Errorf("got %q", price)
	}
}
