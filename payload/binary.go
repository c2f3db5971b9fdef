package payload

import (
	"encoding/binary"
	"errors"
	"math/big"
	"time"
)

// Byte layout of SignedOraclePayloadV2, per spec.md §4.6. Every offset
// is load-bearing: the oracle network decodes this envelope by fixed
// position, not by any self-describing schema.
const (
	HeaderSize    = 32
	RecordSize    = 32
	SignatureSize = 65
	EnvelopeSize  = HeaderSize + RecordSize + SignatureSize

	headerOffsetPadding   = 0 // 6 bytes, zero
	headerOffsetLength    = 6 // uint16, always 1
	headerOffsetTimestamp = 8 // uint48, milliseconds since epoch
	headerOffsetSystemID  = 14 // uint8, fixed at systemIDGasNetwork
	headerOffsetChainID   = 15 // uint64
	headerOffsetHeight    = 23 // uint64, from_block
	headerOffsetVersion   = 31 // uint8, fixed at schemaVersionV2

	recordOffsetType  = 0
	recordOffsetValue = 2

	// recordTypeGasPrice is the only record type this agent emits.
	recordTypeGasPrice = 340

	// schemaVersionV2 is the version byte written into every header.
	schemaVersionV2 = 2

	// systemIDGasNetwork is the fixed system identifier byte the oracle
	// network assigns this agent, per spec.md §4.6.
	systemIDGasNetwork = 2

	// recordCount is fixed at 1: each envelope carries exactly one
	// gas-price record.
	recordCount = 1

	timestampFieldSize = 6 // uint48
)

// ErrValueOverflow marks a wei value too large for the 240-bit record
// field (more than 30 bytes).
var ErrValueOverflow = errors.New("payload: value exceeds uint240 record width")

// ErrTimestampOverflow marks a timestamp too large for the 48-bit
// milliseconds-since-epoch header field.
var ErrTimestampOverflow = errors.New("payload: timestamp exceeds uint48 millisecond width")

// Header is the fixed 32-byte envelope header. SystemID is always
// systemIDGasNetwork; it is not caller-configurable.
type Header struct {
	Timestamp time.Time
	ChainID   uint64
	Height    uint64
}

// putUint48 writes the low 48 bits of v into buf, big-endian.
func putUint48(buf []byte, v uint64) {
	buf[0] = byte(v >> 40)
	buf[1] = byte(v >> 32)
	buf[2] = byte(v >> 24)
	buf[3] = byte(v >> 16)
	buf[4] = byte(v >> 8)
	buf[5] = byte(v)
}

// uint48 reads a 48-bit big-endian value from buf.
func uint48(buf []byte) uint64 {
	return uint64(buf[0])<<40 | uint64(buf[1])<<32 | uint64(buf[2])<<24 |
		uint64(buf[3])<<16 | uint64(buf[4])<<8 | uint64(buf[5])
}

// Record is the fixed 32-byte oracle record: a record type and a
// 240-bit (30-byte) truncated wei value.
type Record struct {
	ValueWei *big.Int
}

// EncodeHeader writes h into the 32-byte header layout. Returns
// ErrTimestampOverflow if the timestamp's millisecond value does not
// fit in 48 bits.
func EncodeHeader(h Header) ([HeaderSize]byte, error) {
	var buf [HeaderSize]byte
	binary.BigEndian.PutUint16(buf[headerOffsetLength:], recordCount)

	millis := h.Timestamp.UnixMilli()
	if millis < 0 || millis > (1<<48)-1 {
		return buf, ErrTimestampOverflow
	}
	putUint48(buf[headerOffsetTimestamp:headerOffsetTimestamp+timestampFieldSize], uint64(millis))

	buf[headerOffsetSystemID] = systemIDGasNetwork
	binary.BigEndian.PutUint64(buf[headerOffsetChainID:], h.ChainID)
	binary.BigEndian.PutUint64(buf[headerOffsetHeight:], h.Height)
	buf[headerOffsetVersion] = schemaVersionV2
	return buf, nil
}

// DecodeHeader parses a 32-byte header. It rejects a length field other
// than 1, a system_id other than systemIDGasNetwork, or a version field
// other than schemaVersionV2.
func DecodeHeader(buf [HeaderSize]byte) (Header, error) {
	if binary.BigEndian.Uint16(buf[headerOffsetLength:]) != recordCount {
		return Header{}, errors.New("payload: header length field must be exactly 1")
	}
	if buf[headerOffsetSystemID] != systemIDGasNetwork {
		return Header{}, errors.New("payload: unsupported header system_id")
	}
	if buf[headerOffsetVersion] != schemaVersionV2 {
		return Header{}, errors.New("payload: unsupported header version")
	}
	millis := uint48(buf[headerOffsetTimestamp : headerOffsetTimestamp+timestampFieldSize])
	chainID := binary.BigEndian.Uint64(buf[headerOffsetChainID:])
	height := binary.BigEndian.Uint64(buf[headerOffsetHeight:])
	return Header{
		Timestamp: time.UnixMilli(int64(millis)).UTC(),
		ChainID:   chainID,
		Height:    height,
	}, nil
}

// EncodeRecord writes r into the 32-byte record layout. Returns
// ErrValueOverflow if ValueWei does not fit in 240 bits.
func EncodeRecord(r Record) ([RecordSize]byte, error) {
	var buf [RecordSize]byte
	binary.BigEndian.PutUint16(buf[recordOffsetType:], recordTypeGasPrice)

	if r.ValueWei == nil || r.ValueWei.Sign() < 0 {
		return buf, errors.New("payload: value must be a non-negative wei amount")
	}
	valueBytes := r.ValueWei.Bytes()
	const maxValueBytes = RecordSize - recordOffsetValue // 30 bytes = 240 bits
	if len(valueBytes) > maxValueBytes {
		return buf, ErrValueOverflow
	}
	copy(buf[RecordSize-len(valueBytes):], valueBytes)
	return buf, nil
}

// DecodeRecord parses a 32-byte record.
func DecodeRecord(buf [RecordSize]byte) (Record, error) {
	recType := binary.BigEndian.Uint16(buf[recordOffsetType:])
	if recType != recordTypeGasPrice {
		return Record{}, errors.New("payload: unsupported record type")
	}
	value := new(big.Int).SetBytes(buf[recordOffsetValue:])
	return Record{ValueWei: value}, nil
}

// SignedOraclePayloadV2 is the full 129-byte wire envelope: header,
// record, and the network's 65-byte r‖s‖v signature over
// keccak256(header ‖ record).
type SignedOraclePayloadV2 struct {
	Header    Header
	Record    Record
	Signature [SignatureSize]byte
}

// OracleDigest returns the digest the 65-byte signature is taken over:
// keccak256(header ‖ record).
func OracleDigest(headerBytes [HeaderSize]byte, recordBytes [RecordSize]byte) [32]byte {
	digest := keccak256(headerBytes[:], recordBytes[:])
	var out [32]byte
	copy(out[:], digest)
	return out
}

// Encode serializes the envelope to exactly EnvelopeSize bytes.
func (p SignedOraclePayloadV2) Encode() ([EnvelopeSize]byte, error) {
	var out [EnvelopeSize]byte
	header, err := EncodeHeader(p.Header)
	if err != nil {
		return out, err
	}
	record, err := EncodeRecord(p.Record)
	if err != nil {
		return out, err
	}
	copy(out[0:HeaderSize], header[:])
	copy(out[HeaderSize:HeaderSize+RecordSize], record[:])
	copy(out[HeaderSize+RecordSize:], p.Signature[:])
	return out, nil
}

// DecodeSignedOraclePayloadV2 parses a 129-byte wire envelope.
func DecodeSignedOraclePayloadV2(buf [EnvelopeSize]byte) (SignedOraclePayloadV2, error) {
	var headerBytes [HeaderSize]byte
	var recordBytes [RecordSize]byte
	copy(headerBytes[:], buf[0:HeaderSize])
	copy(recordBytes[:], buf[HeaderSize:HeaderSize+RecordSize])

	header, err := DecodeHeader(headerBytes)
	if err != nil {
		return SignedOraclePayloadV2{}, err
	}
	record, err := DecodeRecord(recordBytes)
	if err != nil {
		return SignedOraclePayloadV2{}, err
	}

	var sig [SignatureSize]byte
	copy(sig[:], buf[HeaderSize+RecordSize:])

	return SignedOraclePayloadV2{Header: header, Record: record, Signature: sig}, nil
}
