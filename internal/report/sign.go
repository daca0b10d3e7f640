/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package report

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

var (
	ErrNotSign1  = errors.New("not a COSE_Sign1 message")
	ErrSignature = errors.New("report signature verification failed")
)

// KeyID is the SHA-256 of the DER encoded public key.
func KeyID(pub *ecdsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(der)
	return sum[:], nil
}

// Signer produces COSE_Sign1 envelopes over CBOR encoded reports.
type Signer struct {
	signer cose.Signer
	kid    []byte
}

func NewSigner(key *ecdsa.PrivateKey) (*Signer, error) {
	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	kid, err := KeyID(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("derive kid: %w", err)
	}
	return &Signer{signer: signer, kid: kid}, nil
}

func (s *Signer) KeyID() []byte {
	return s.kid
}

// Sign encodes r and signs it.
func (s *Signer) Sign(r Report) ([]byte, error) {
	headers := cose.Headers{
		Protected: cose.ProtectedHeader{
			cose.HeaderLabelAlgorithm: cose.AlgorithmES256,
		},
		Unprotected: cose.UnprotectedHeader{
			cose.HeaderLabelKeyID: s.kid,
		},
	}

	payload, err := cbor.Marshal(r)
	if err != nil {
		return nil, err
	}

	return cose.Sign1(rand.Reader, s.signer, headers, payload, nil)
}

// Verify checks raw against pub and returns the report it carries.
func Verify(pub *ecdsa.PublicKey, raw []byte) (*Report, error) {
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, pub)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}

	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSign1, err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	var r Report
	if err := cbor.Unmarshal(msg.Payload, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// Payload returns the unverified payload of a COSE_Sign1 message.
func Payload(raw []byte) ([]byte, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSign1, err)
	}
	return msg.Payload, nil
}
