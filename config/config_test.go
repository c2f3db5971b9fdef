package config

import "testing"

const testSignerKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func validChainsJSON() string {
	return `[
		{
			"system": "ethereum",
			"network": "mainnet",
			"json_rpc_url": "https://eth.example/rpc",
			"agents": [
				{"kind": "percentile", "signer_key": "` + testSignerKey + `", "trigger": {"type": "block"}},
				{"kind": "pending_floor", "signer_key": "` + testSignerKey + `", "trigger": {"type": "poll", "rate_ms": 5000}}
			]
		}
	]`
}

func TestParseChainsValid(t *testing.T) {
	chains, err := ParseChains([]byte(validChainsJSON()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(chains))
	}
	if chains[0].InFlightCap != defaultInFlightCap {
		t.Errorf("got in_flight_cap %d, want default %d", chains[0].InFlightCap, defaultInFlightCap)
	}
	if len(chains[0].Agents) != 2 {
		t.Fatalf("got %d agents, want 2", len(chains[0].Agents))
	}
	if chains[0].Agents[0].Trigger.Kind != TriggerBlock {
		t.Errorf("agent 0 trigger = %v, want block", chains[0].Agents[0].Trigger.Kind)
	}
	if chains[0].Agents[1].Trigger.Kind != TriggerPoll || chains[0].Agents[1].Trigger.RateMS != 5000 {
		t.Errorf("agent 1 trigger = %+v, want poll/5000", chains[0].Agents[1].Trigger)
	}
}

func TestParseChainsRejectsEmptyList(t *testing.T) {
	if _, err := ParseChains([]byte(`[]`)); err == nil {
		t.Error("expected error for empty chains list")
	}
}

func TestParseChainsRejectsUnknownModelKind(t *testing.T) {
	bad := `[{"system":"ethereum","network":"mainnet","json_rpc_url":"https://x",
		"agents":[{"kind":"not_a_model","signer_key":"` + testSignerKey + `","trigger":{"type":"block"}}]}]`
	if _, err := ParseChains([]byte(bad)); err == nil {
		t.Error("expected error for unknown model kind")
	}
}

func TestParseChainsRejectsMissingSignerKey(t *testing.T) {
	bad := `[{"system":"ethereum","network":"mainnet","json_rpc_url":"https://x",
		"agents":[{"kind":"percentile","signer_key":"","trigger":{"type":"block"}}]}]`
	if _, err := ParseChains([]byte(bad)); err == nil {
		t.Error("expected error for empty signer_key")
	}
}

func TestParseChainsRejectsNonHexSignerKey(t *testing.T) {
	bad := `[{"system":"ethereum","network":"mainnet","json_rpc_url":"https://x",
		"agents":[{"kind":"percentile","signer_key":"not-hex","trigger":{"type":"block"}}]}]`
	if _, err := ParseChains([]byte(bad)); err == nil {
		t.Error("expected error for non-hex signer_key")
	}
}

func TestParseChainsRejectsUnknownTriggerType(t *testing.T) {
	bad := `[{"system":"ethereum","network":"mainnet","json_rpc_url":"https://x",
		"agents":[{"kind":"percentile","signer_key":"` + testSignerKey + `","trigger":{"type":"hourly"}}]}]`
	if _, err := ParseChains([]byte(bad)); err == nil {
		t.Error("expected error for unknown trigger type")
	}
}

func TestParseChainsAppliesPollTriggerDefaultRate(t *testing.T) {
	withoutRate := `[{"system":"ethereum","network":"mainnet","json_rpc_url":"https://x",
		"agents":[{"kind":"pending_floor","signer_key":"` + testSignerKey + `","trigger":{"type":"poll"}}]}]`
	chains, err := ParseChains([]byte(withoutRate))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chains[0].Agents[0].Trigger.RateMS != defaultPollIntervalSeconds*1000 {
		t.Errorf("got rate_ms %d, want default %d", chains[0].Agents[0].Trigger.RateMS, defaultPollIntervalSeconds*1000)
	}
}

func TestParseChainsParsesPendingBlockDataSource(t *testing.T) {
	withPending := `[{"system":"ethereum","network":"mainnet","json_rpc_url":"https://x",
		"pending_block_data_source":{"url":"https://mempool.example","method":"eth_pendingTransactions","poll_rate_ms":3000},
		"agents":[{"kind":"percentile","signer_key":"` + testSignerKey + `","trigger":{"type":"block"}}]}]`
	chains, err := ParseChains([]byte(withPending))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := chains[0].PendingBlockDataSource
	if src == nil {
		t.Fatal("expected pending_block_data_source to be set")
	}
	if src.URL != "https://mempool.example" || src.Method != "eth_pendingTransactions" || src.PollRateMS != 3000 {
		t.Errorf("got %+v", src)
	}
}

func TestParseChainsRejectsDuplicateChain(t *testing.T) {
	dup := `[
		{"system":"ethereum","network":"mainnet","json_rpc_url":"https://a",
			"agents":[{"kind":"percentile","signer_key":"` + testSignerKey + `","trigger":{"type":"block"}}]},
		{"system":"ethereum","network":"mainnet","json_rpc_url":"https://b",
			"agents":[{"kind":"percentile","signer_key":"` + testSignerKey + `","trigger":{"type":"block"}}]}
	]`
	if _, err := ParseChains([]byte(dup)); err == nil {
		t.Error("expected error for duplicate chain")
	}
}

func TestParseChainsRejectsMissingJSONRPCURL(t *testing.T) {
	bad := `[{"system":"ethereum","network":"mainnet",
		"agents":[{"kind":"percentile","signer_key":"` + testSignerKey + `","trigger":{"type":"block"}}]}]`
	if _, err := ParseChains([]byte(bad)); err == nil {
		t.Error("expected error for missing json_rpc_url")
	}
}

func TestParseChainsRejectsNoAgents(t *testing.T) {
	bad := `[{"system":"ethereum","network":"mainnet","json_rpc_url":"https://x","agents":[]}]`
	if _, err := ParseChains([]byte(bad)); err == nil {
		t.Error("expected error for empty agents list")
	}
}

func TestParseChainsRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseChains([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
