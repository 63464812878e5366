// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package testutil builds throwaway certificate hierarchies for tests.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

var serial atomic.Int64

// Node is a certificate together with the key that can sign children.
type Node struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// Options tweaks generated certificates.
type Options struct {
	DNSNames   []string
	IsCA       bool
	NotBefore  time.Time
	NotAfter   time.Time
	OCSPServer []string
}

// NewRoot creates a self-signed CA.
func NewRoot(tb testing.TB, commonName string) *Node {
	tb.Helper()
	return issue(tb, nil, commonName, Options{IsCA: true})
}

// Issue creates a certificate for commonName signed by n.
func (n *Node) Issue(tb testing.TB, commonName string, opts Options) *Node {
	tb.Helper()
	return issue(tb, n, commonName, opts)
}

func issue(tb testing.TB, parent *Node, commonName string, opts Options) *Node {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatalf("generate key: %v", err)
	}

	notBefore := opts.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().Add(-time.Hour)
	}
	notAfter := opts.NotAfter
	if notAfter.IsZero() {
		notAfter = time.Now().Add(90 * 24 * time.Hour)
	}

	tpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial.Add(1)),
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"Policy Verifier Testing"}},
		DNSNames:              opts.DNSNames,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		BasicConstraintsValid: true,
		IsCA:                  opts.IsCA,
		OCSPServer:            opts.OCSPServer,
	}
	if opts.IsCA {
		tpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	} else {
		tpl.KeyUsage = x509.KeyUsageDigitalSignature
		tpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	}

	issuerTpl, signer := tpl, key
	if parent != nil {
		issuerTpl, signer = parent.Cert, parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, tpl, issuerTpl, &key.PublicKey, signer)
	if err != nil {
		tb.Fatalf("create certificate %q: %v", commonName, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		tb.Fatalf("parse certificate %q: %v", commonName, err)
	}
	return &Node{Cert: cert, Key: key}
}

// PEM concatenates the PEM encodings of certs in order.
func PEM(certs ...*x509.Certificate) []byte {
	var out []byte
	for _, c := range certs {
		out = append(out, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.Raw})...)
	}
	return out
}

// WriteBundle writes certs as a PEM bundle to path.
func WriteBundle(tb testing.TB, path string, certs ...*x509.Certificate) {
	tb.Helper()
	if err := os.WriteFile(path, PEM(certs...), 0o644); err != nil {
		tb.Fatalf("write bundle: %v", err)
	}
}
