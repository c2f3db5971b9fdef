// Package signer wraps go-ethereum's secp256k1 implementation to
// produce the two ECDSA signatures spec.md §4.6 requires: the
// collector's EIP-712 typed-data signature and the oracle network's
// signature over the binary envelope digest. The teacher's own
// crypto/secp256k1.go is an admitted placeholder (it runs on
// elliptic.P256 and its Ecrecover returns "not implemented"), so this
// package is grounded on go-ethereum/crypto instead, already a real
// dependency of the teacher's stack.
package signer

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds a secp256k1 private key and signs 32-byte digests.
type Signer struct {
	key *ecdsa.PrivateKey
}

// GenerateKey creates a new random signer.
func GenerateKey() (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// FromHex loads a signer from a hex-encoded (no 0x prefix required)
// secp256k1 private key.
func FromHex(hexKey string) (*Signer, error) {
	if len(hexKey) >= 2 && hexKey[0] == '0' && (hexKey[1] == 'x' || hexKey[1] == 'X') {
		hexKey = hexKey[2:]
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// ExportHex returns the hex-encoded private key, for operators to save
// into an agent's signer_key immediately after generate-keys.
func (s *Signer) ExportHex() string {
	return hexEncode(crypto.FromECDSA(s.key))
}

func hexEncode(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0xf]
	}
	return string(out)
}

// Address returns the signer's Ethereum-style address, derived from the
// public key.
func (s *Signer) Address() [20]byte {
	addr := crypto.PubkeyToAddress(s.key.PublicKey)
	var out [20]byte
	copy(out[:], addr.Bytes())
	return out
}

// Sign produces a 65-byte r‖s‖v signature over a 32-byte digest.
func (s *Signer) Sign(digest [32]byte) ([65]byte, error) {
	sig, err := crypto.Sign(digest[:], s.key)
	if err != nil {
		return [65]byte{}, err
	}
	var out [65]byte
	copy(out[:], sig)
	return out, nil
}

// Recover recovers the signing address from a digest and a 65-byte
// r‖s‖v signature, for verifying a signature this package (or a peer
// using the same convention) produced.
func Recover(digest [32]byte, sig [65]byte) ([20]byte, error) {
	pub, err := crypto.SigToPub(digest[:], sig[:])
	if err != nil {
		return [20]byte{}, err
	}
	if pub == nil {
		return [20]byte{}, errors.New("signer: recovered nil public key")
	}
	addr := crypto.PubkeyToAddress(*pub)
	var out [20]byte
	copy(out[:], addr.Bytes())
	return out, nil
}
