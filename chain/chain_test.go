package chain

import "testing"

func TestChainIDMapping(t *testing.T) {
	cases := []struct {
		key  Key
		want uint64
	}{
		{Key{SystemEthereum, NetworkMainnet}, 1},
		{Key{SystemBase, NetworkMainnet}, 8453},
		{Key{SystemPolygon, NetworkMainnet}, 137},
	}
	for _, c := range cases {
		got, err := c.key.ChainID()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.key, err)
		}
		if got != c.want {
			t.Errorf("%s: chain id = %d, want %d", c.key, got, c.want)
		}
	}
}

func TestBlockTimeMapping(t *testing.T) {
	got, err := (Key{SystemEthereum, NetworkMainnet}).BlockTimeMS()
	if err != nil || got != 12000 {
		t.Fatalf("ethereum block time = %d, %v, want 12000", got, err)
	}
	got, err = (Key{SystemBase, NetworkMainnet}).BlockTimeMS()
	if err != nil || got != 2000 {
		t.Fatalf("base block time = %d, %v, want 2000", got, err)
	}
}

func TestUnknownChainKey(t *testing.T) {
	k := Key{SystemUnknown, NetworkMainnet}
	if _, err := k.ChainID(); err == nil {
		t.Fatal("expected error for unknown system")
	}
}

func TestParseSystemRoundTrip(t *testing.T) {
	for _, s := range []System{SystemEthereum, SystemBase, SystemPolygon} {
		parsed, err := ParseSystem(s.String())
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		if parsed != s {
			t.Errorf("round-trip mismatch: got %s, want %s", parsed, s)
		}
	}
}

func TestParseSystemInvalid(t *testing.T) {
	if _, err := ParseSystem("solana"); err == nil {
		t.Fatal("expected error for unsupported system")
	}
}

func TestSystemJSONRoundTrip(t *testing.T) {
	data, err := SystemBase.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"base"` {
		t.Fatalf("got %s, want \"base\"", data)
	}
	var s System
	if err := s.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if s != SystemBase {
		t.Fatalf("got %v, want SystemBase", s)
	}
}
