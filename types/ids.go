// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	// IDLen is the length in bytes of object IDs, addresses and digests.
	IDLen = 32

	hexPrefix = "0x"
)

var (
	errEmptyID       = errors.New("empty identifier")
	errIDTooLong     = errors.New("identifier longer than 32 bytes")
	errBadDigestSize = errors.New("digest must decode to 32 bytes")

	// StdlibPackageID is the Move standard library package (0x1).
	StdlibPackageID = ObjectID{31: 0x01}
	// FrameworkPackageID is the Sui framework package (0x2).
	FrameworkPackageID = ObjectID{31: 0x02}
	// SystemStateObjectID is the shared system state object (0x5).
	SystemStateObjectID = ObjectID{31: 0x05}
	// ClockObjectID is the shared clock object (0x6).
	ClockObjectID = ObjectID{31: 0x06}
)

// ObjectID identifies an on-chain object. It is rendered as 0x followed by
// 64 lowercase hex digits.
type ObjectID [IDLen]byte

// Address identifies an account. Addresses and object IDs share a format.
type Address [IDLen]byte

// Digest is a 32 byte hash rendered in base58.
type Digest [IDLen]byte

// EmptyDigest is the zero digest, used as the previous transaction of
// genesis and minted objects.
var EmptyDigest Digest

func parseHex32(s string) ([IDLen]byte, error) {
	var out [IDLen]byte
	s = strings.TrimPrefix(strings.TrimPrefix(s, hexPrefix), "0X")
	if len(s) == 0 {
		return out, errEmptyID
	}
	if len(s) > IDLen*2 {
		return out, errIDTooLong
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	copy(out[IDLen-len(b):], b)
	return out, nil
}

// ParseObjectID parses a hex object ID. Short forms such as "0x2" are
// left-padded with zeros.
func ParseObjectID(s string) (ObjectID, error) {
	b, err := parseHex32(s)
	if err != nil {
		return ObjectID{}, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return ObjectID(b), nil
}

// MustParseObjectID is ParseObjectID for constants. It panics on error.
func MustParseObjectID(s string) ObjectID {
	id, err := ParseObjectID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ObjectID) String() string { return hexPrefix + hex.EncodeToString(id[:]) }

// IsZero reports whether id is the all-zero ID.
func (id ObjectID) IsZero() bool { return id == ObjectID{} }

func (id ObjectID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ObjectID) UnmarshalText(text []byte) error {
	parsed, err := ParseObjectID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseAddress parses a hex address. Short forms are left-padded.
func ParseAddress(s string) (Address, error) {
	b, err := parseHex32(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return Address(b), nil
}

func (a Address) String() string { return hexPrefix + hex.EncodeToString(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseDigest parses a base58 digest.
func ParseDigest(s string) (Digest, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Digest{}, fmt.Errorf("invalid digest %q: %w", s, err)
	}
	if len(b) != IDLen {
		return Digest{}, fmt.Errorf("invalid digest %q: %w", s, errBadDigestSize)
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

func (d Digest) String() string { return base58.Encode(d[:]) }

func (d Digest) IsZero() bool { return d == Digest{} }

func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
