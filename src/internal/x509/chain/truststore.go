// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"fmt"
	"os"

	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
)

// TrustStore is an immutable, ordered set of trust anchors.
//
// It is loaded once and shared read-only by every batch worker; no method
// mutates it, so no locking is needed.
type TrustStore struct {
	roots []*x509.Certificate
	path  string
}

// NewTrustStore builds a trust store from roots, preserving order.
func NewTrustStore(roots ...*x509.Certificate) *TrustStore {
	return &TrustStore{roots: append([]*x509.Certificate(nil), roots...)}
}

// LoadTrustStore reads a PEM bundle whose entries are delimited by
// [x509certs.PEMFooter].
//
// Parameters:
//   - path: Location of the bundle
//
// Returns:
//   - *TrustStore: Loaded store
//   - error: Read or decode failure
func LoadTrustStore(path string) (*TrustStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trust store: %w", err)
	}

	roots, err := x509certs.New().DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode trust store %s: %w", path, err)
	}

	ts := NewTrustStore(roots...)
	ts.path = path
	return ts, nil
}

// Len returns the number of anchors.
func (ts *TrustStore) Len() int { return len(ts.roots) }

// Path returns the file the store was loaded from, if any.
func (ts *TrustStore) Path() string { return ts.path }

// Each calls fn for every anchor in bundle order until fn returns false.
func (ts *TrustStore) Each(fn func(i int, root *x509.Certificate) bool) {
	for i, r := range ts.roots {
		if !fn(i, r) {
			return
		}
	}
}
