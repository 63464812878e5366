// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"crypto/x509"
	"errors"

	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
)

// ErrEmptyChain is returned when a chain has no leaf.
var ErrEmptyChain = errors.New("x509chain: empty chain")

// Chain manages an ordered [X.509] certificate chain, leaf first.
//
// [X.509]: https://grokipedia.com/page/X.509
//
// A Chain is not safe for concurrent mutation.
type Chain struct {
	Certs []*x509.Certificate
}

// New creates a new Chain from certs in leaf-first order.
//
// Parameters:
//   - certs: Leaf followed by any supplied intermediates
//
// Returns:
//   - *Chain: New Chain instance
//   - error: [ErrEmptyChain] if certs is empty
func New(certs ...*x509.Certificate) (*Chain, error) {
	if len(certs) == 0 {
		return nil, ErrEmptyChain
	}
	return &Chain{Certs: append([]*x509.Certificate(nil), certs...)}, nil
}

// Parse decodes data (PEM or DER, one or more certificates) into a Chain.
//
// Parameters:
//   - data: Encoded certificates, leaf first
//
// Returns:
//   - *Chain: Decoded chain
//   - error: Decoding error or [ErrEmptyChain]
func Parse(data []byte) (*Chain, error) {
	certs, err := x509certs.New().DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	return New(certs...)
}

// Supplied returns every certificate after the leaf, in order.
func (ch *Chain) Supplied() []*x509.Certificate {
	return append([]*x509.Certificate(nil), ch.Certs[1:]...)
}

// Extend appends certs after the current tail.
func (ch *Chain) Extend(certs ...*x509.Certificate) {
	ch.Certs = append(ch.Certs, certs...)
}

// Len returns the number of certificates in the chain.
func (ch *Chain) Len() int { return len(ch.Certs) }

// IsSelfSigned checks if a certificate is self-signed.
//
// It verifies the certificate's signature against itself.
func IsSelfSigned(cert *x509.Certificate) bool {
	ok, err := CheckLink(cert, cert)
	return ok && err == nil
}

// CheckLink reports whether issuer's public key verifies subject's signature.
//
// Only the signature is checked; validity periods, basic constraints and
// names are policy questions left to the evaluator.
//
// Parameters:
//   - subject: Certificate whose signature is checked
//   - issuer: Certificate providing the public key
//
// Returns:
//   - bool: true if the signature verifies
//   - error: Non-nil only when verification could not be carried out at all
//     (unsupported or disallowed algorithm); a plain mismatch is (false, nil)
func CheckLink(subject, issuer *x509.Certificate) (bool, error) {
	err := issuer.CheckSignature(subject.SignatureAlgorithm, subject.RawTBSCertificate, subject.Signature)
	if err == nil {
		return true, nil
	}

	var insecure x509.InsecureAlgorithmError
	if errors.Is(err, x509.ErrUnsupportedAlgorithm) || errors.As(err, &insecure) {
		return false, err
	}
	return false, nil
}

// Issued reports whether issuer could have issued subject.
//
// This is a structural check: the issuer's subject name must equal the
// subject's issuer name, the authority key identifier (when both sides carry
// one) must match the issuer's subject key identifier, and an issuer with a
// key usage extension must allow certificate signing. Signatures are not
// verified.
func Issued(issuer, subject *x509.Certificate) bool {
	if !bytes.Equal(issuer.RawSubject, subject.RawIssuer) {
		return false
	}
	if len(subject.AuthorityKeyId) > 0 && len(issuer.SubjectKeyId) > 0 &&
		!bytes.Equal(subject.AuthorityKeyId, issuer.SubjectKeyId) {
		return false
	}
	if issuer.KeyUsage != 0 && issuer.KeyUsage&x509.KeyUsageCertSign == 0 {
		return false
	}
	return true
}
