// Package publish delivers a signed AgentPayload to the collector over
// HTTP, per spec.md §6's publishing interface.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gasnetwork/agent/log"
	"github.com/gasnetwork/agent/payload"
)

var publishLog = log.Default().Module("publish")

// Envelope is the JSON body posted to the collector: the payload, the
// collector's EIP-712 typed-data signature, and the oracle network's
// signature over the binary SignedOraclePayloadV2 record. Both
// signatures are hex-encoded with a 0x prefix.
type Envelope struct {
	Payload          payload.AgentPayload `json:"payload"`
	Signature        string               `json:"signature"`
	NetworkSignature string               `json:"network_signature"`
}

// Client posts signed payloads to a collector endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a Client that posts to collectorEndpoint + "/api/agent/publish".
func New(collectorEndpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: collectorEndpoint + "/api/agent/publish",
		http:     &http.Client{Timeout: timeout},
	}
}

// Publish sends env to the collector. A non-2xx response is returned
// as an error; the caller decides whether to retry.
func (c *Client) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("publish: marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("publish: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("publish: collector returned status %d", resp.StatusCode)
	}
	publishLog.Debug("published payload", "from_block", env.Payload.FromBlock, "settlement", env.Payload.Settlement.String())
	return nil
}
