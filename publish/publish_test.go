package publish

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"context"

	"github.com/gasnetwork/agent/chain"
	"github.com/gasnetwork/agent/payload"
)

func sampleEnvelope() Envelope {
	return Envelope{
		Payload: payload.AgentPayload{
			SchemaVersion: payload.CurrentSchemaVersion,
			FromBlock:     100,
			Settlement:    payload.SettlementFast,
			Timestamp:     time.Unix(1_700_000_000, 0).UTC(),
			System:        chain.SystemEthereum,
			Network:       chain.NetworkMainnet,
			PriceWei:      big.NewInt(12_500_000_000),
		},
		Signature:        "0xdeadbeef",
		NetworkSignature: "0xfeedface",
	}
}

func TestPublishSuccess(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Publish(context.Background(), sampleEnvelope()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/agent/publish" {
		t.Errorf("got path %q, want /api/agent/publish", gotPath)
	}
}

func TestPublishNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Publish(context.Background(), sampleEnvelope()); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

func TestPublishContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if err := c.Publish(ctx, sampleEnvelope()); err == nil {
		t.Error("expected context deadline error")
	}
}
