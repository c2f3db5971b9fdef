package payload

import (
	"math/big"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// domainName fixes the EIP-712 domain spec.md §4.6 defines for the
// collector signature. version is the payload's own schema_version
// string; verifyingContract is the zero address, since this domain has
// no on-chain contract of record.
const (
	domainName = "Gas Network AgentPayload"

	domainTypeHashStr  = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	payloadTypeHashStr = "AgentPayload(string schema_version,uint256 timestamp,string system,string network,string settlement,uint256 from_block,uint256 price)"
)

// keccak256 hashes data with Keccak-256 (not NIST SHA3-256).
func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// pad32 left-pads b to a 32-byte ABI word.
func pad32(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func encodeUint256(v *big.Int) []byte {
	var u uint256.Int
	u.SetFromBig(v)
	b := u.Bytes32()
	return b[:]
}

// encodeDynamicString hashes a dynamic string type for inclusion in an
// EIP-712 struct hash, per the standard's "bytes and string are encoded
// as their keccak256 hash" rule.
func encodeDynamicString(s string) []byte {
	return keccak256([]byte(s))
}

// domainSeparator computes the EIP-712 domain separator for a given
// chain ID, per spec.md §4.6. The verifying contract is always the
// zero address.
func domainSeparator(chainID uint64, schemaVersion string) []byte {
	typeHash := keccak256([]byte(domainTypeHashStr))
	nameHash := keccak256([]byte(domainName))
	versionHash := keccak256([]byte(schemaVersion))
	chainIDWord := encodeUint256(new(big.Int).SetUint64(chainID))
	verifyingContract := pad32(nil)
	return keccak256(typeHash, nameHash, versionHash, chainIDWord, verifyingContract)
}

// structHash computes the EIP-712 struct hash of an AgentPayload, per
// spec.md §4.6: schema_version, system, network, and settlement are
// dynamic strings (keccak256-hashed); timestamp is nanoseconds since
// the Unix epoch; price is the wei amount, both as uint256.
func structHash(p AgentPayload) []byte {
	typeHash := keccak256([]byte(payloadTypeHashStr))
	schemaVersion := encodeDynamicString(p.SchemaVersion)
	timestamp := encodeUint256(big.NewInt(p.TimestampNanos()))
	system := encodeDynamicString(p.System.String())
	network := encodeDynamicString(p.Network.String())
	settlement := encodeDynamicString(p.Settlement.String())
	fromBlock := encodeUint256(new(big.Int).SetUint64(p.FromBlock))
	price := encodeUint256(p.PriceWei)

	return keccak256(typeHash, schemaVersion, timestamp, system, network, settlement, fromBlock, price)
}

// TypedDataDigest computes the final EIP-712 digest the collector
// signature is taken over: keccak256(0x19 0x01 ‖ domainSeparator ‖
// structHash), scoped to chainID.
func TypedDataDigest(p AgentPayload, chainID uint64) [32]byte {
	prefix := []byte{0x19, 0x01}
	digest := keccak256(prefix, domainSeparator(chainID, p.SchemaVersion), structHash(p))
	var out [32]byte
	copy(out[:], digest)
	return out
}
