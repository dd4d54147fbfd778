// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keys implements a reference Ed25519 signer producing Sui
// serialized signatures.
package keys

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/ava-labs/movesandbox/types"
)

const (
	// FlagEd25519 is the signature scheme flag of Ed25519 signatures.
	FlagEd25519 byte = 0x00

	// SerializedSignatureLen is flag || signature || public key.
	SerializedSignatureLen = 1 + ed25519.SignatureSize + ed25519.PublicKeySize
)

var (
	errBadSignatureLen = errors.New("serialized signature has the wrong length")
	errUnknownScheme   = errors.New("unsupported signature scheme")
	errBadSignature    = errors.New("signature verification failed")
	errWrongSigner     = errors.New("signature was not produced by the sender")

	// transactionIntent is the intent prefix of transaction data: scope
	// TransactionData, version V0, app id Sui.
	transactionIntent = []byte{0, 0, 0}
)

// Signer signs transactions with an Ed25519 key.
type Signer struct {
	priv ed25519.PrivateKey
	addr types.Address
}

// Generate returns a signer for a fresh random key.
func Generate() (*Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("couldn't generate key: %w", err)
	}
	return newSigner(priv), nil
}

// FromSeed returns the signer of the key derived from a 32 byte seed.
func FromSeed(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return newSigner(ed25519.NewKeyFromSeed(seed)), nil
}

func newSigner(priv ed25519.PrivateKey) *Signer {
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{priv: priv, addr: AddressFromPublicKey(pub)}
}

// Address returns the Sui address of the signer.
func (s *Signer) Address() types.Address { return s.addr }

// PublicKey returns the Ed25519 public key of the signer.
func (s *Signer) PublicKey() ed25519.PublicKey { return s.priv.Public().(ed25519.PublicKey) }

// Sign returns the base64 serialized signature of [txBytes].
func (s *Signer) Sign(txBytes []byte) string {
	digest := IntentDigest(txBytes)
	sig := ed25519.Sign(s.priv, digest[:])

	serialized := make([]byte, 0, SerializedSignatureLen)
	serialized = append(serialized, FlagEd25519)
	serialized = append(serialized, sig...)
	serialized = append(serialized, s.PublicKey()...)
	return base64.StdEncoding.EncodeToString(serialized)
}

// SignTransaction signs [txBytes]. The bytes are returned unchanged in
// base64 form.
func (s *Signer) SignTransaction(_ context.Context, txBytes []byte) (*types.SignedTransaction, error) {
	return &types.SignedTransaction{
		Bytes:     base64.StdEncoding.EncodeToString(txBytes),
		Signature: s.Sign(txBytes),
	}, nil
}

// AddressFromPublicKey derives the Sui address of an Ed25519 public key:
// blake2b-256(flag || pk).
func AddressFromPublicKey(pub ed25519.PublicKey) types.Address {
	h, _ := blake2b.New256(nil)
	_, _ = h.Write([]byte{FlagEd25519})
	_, _ = h.Write(pub)
	var addr types.Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// IntentDigest is the message actually signed for [txBytes].
func IntentDigest(txBytes []byte) [32]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}

// Verify checks a base64 serialized signature over [txBytes] and returns
// the address of the signer.
func Verify(txBytes []byte, signature string) (types.Address, error) {
	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return types.Address{}, fmt.Errorf("couldn't decode signature: %w", err)
	}
	if len(raw) != SerializedSignatureLen {
		return types.Address{}, fmt.Errorf("%w: %d", errBadSignatureLen, len(raw))
	}
	if raw[0] != FlagEd25519 {
		return types.Address{}, fmt.Errorf("%w: flag 0x%02x", errUnknownScheme, raw[0])
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])

	digest := IntentDigest(txBytes)
	if !ed25519.Verify(pub, digest[:], sig) {
		return types.Address{}, errBadSignature
	}
	return AddressFromPublicKey(pub), nil
}

// VerifySender checks that one of [signatures] is a valid signature of
// [sender] over [txBytes].
func VerifySender(txBytes []byte, signatures []string, sender types.Address) error {
	if len(signatures) == 0 {
		return errBadSignature
	}
	var lastErr error = errWrongSigner
	for _, sig := range signatures {
		signer, err := Verify(txBytes, sig)
		if err != nil {
			lastErr = err
			continue
		}
		if signer == sender {
			return nil
		}
	}
	return lastErr
}
