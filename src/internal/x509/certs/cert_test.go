// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/testutil"
	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
)

func TestCertificateOperations(t *testing.T) {
	root := testutil.NewRoot(t, "Test Root")
	inter := root.Issue(t, "Test Intermediate", testutil.Options{IsCA: true})
	leaf := inter.Issue(t, "www.example.com", testutil.Options{DNSNames: []string{"www.example.com"}})

	decoder := x509certs.New()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Decode PEM",
			testFunc: func(t *testing.T) {
				cert, err := decoder.Decode(testutil.PEM(leaf.Cert))
				require.NoError(t, err)
				assert.Equal(t, "www.example.com", cert.Subject.CommonName)
			},
		},
		{
			name: "Decode DER",
			testFunc: func(t *testing.T) {
				cert, err := decoder.Decode(leaf.Cert.Raw)
				require.NoError(t, err)
				assert.True(t, cert.Equal(leaf.Cert))
			},
		},
		{
			name: "DecodeMultiple keeps order",
			testFunc: func(t *testing.T) {
				certs, err := decoder.DecodeMultiple(testutil.PEM(leaf.Cert, inter.Cert, root.Cert))
				require.NoError(t, err)
				require.Len(t, certs, 3)
				assert.True(t, certs[0].Equal(leaf.Cert))
				assert.True(t, certs[1].Equal(inter.Cert))
				assert.True(t, certs[2].Equal(root.Cert))
			},
		},
		{
			name: "DecodeMultiple DER",
			testFunc: func(t *testing.T) {
				der := append(append([]byte(nil), leaf.Cert.Raw...), inter.Cert.Raw...)
				certs, err := decoder.DecodeMultiple(der)
				require.NoError(t, err)
				assert.Len(t, certs, 2)
			},
		},
		{
			name: "EncodePEM round trip",
			testFunc: func(t *testing.T) {
				encoded := decoder.EncodePEM(leaf.Cert, inter.Cert)
				block, rest := pem.Decode(encoded)
				require.NotNil(t, block)
				assert.Equal(t, leaf.Cert.Raw, block.Bytes)
				block, _ = pem.Decode(rest)
				require.NotNil(t, block)
				assert.Equal(t, inter.Cert.Raw, block.Bytes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestDecodeInvalid(t *testing.T) {
	decoder := x509certs.New()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "Wrong block type",
			data:    pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}}),
			wantErr: x509certs.ErrInvalidBlockType,
		},
		{
			name:    "Garbage",
			data:    []byte("not a certificate"),
			wantErr: x509certs.ErrParsePKCS7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decoder.Decode(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := decoder.DecodeMultiple(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("bogus")}))
	assert.ErrorIs(t, err, x509certs.ErrParseCertificate)
}

func TestDecodeBundle(t *testing.T) {
	a := testutil.NewRoot(t, "Root A")
	b := testutil.NewRoot(t, "Root B")
	decoder := x509certs.New()

	t.Run("splits on footer", func(t *testing.T) {
		bundle := "# comment lines before the first entry are tolerated by pem.Decode\n" +
			string(testutil.PEM(a.Cert)) + "\n\n" + string(testutil.PEM(b.Cert)) + "\n"

		certs, err := decoder.DecodeBundle([]byte(bundle))
		require.NoError(t, err)
		require.Len(t, certs, 2)
		assert.Equal(t, "Root A", certs[0].Subject.CommonName)
		assert.Equal(t, "Root B", certs[1].Subject.CommonName)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := decoder.DecodeBundle([]byte("\n  \n"))
		assert.ErrorIs(t, err, x509certs.ErrEmptyBundle)
	})

	t.Run("broken entry", func(t *testing.T) {
		broken := string(testutil.PEM(a.Cert)) + "-----BEGIN CERTIFICATE-----\nAAAA\n" + x509certs.PEMFooter + "\n"
		_, err := decoder.DecodeBundle([]byte(broken))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bundle entry 1")
	})
}

func TestFingerprint(t *testing.T) {
	root := testutil.NewRoot(t, "Fingerprint Root")

	sum := sha256.Sum256(root.Cert.Raw)
	want := strings.ToUpper(hex.EncodeToString(sum[:]))

	got := x509certs.Fingerprint(root.Cert)
	assert.Equal(t, want, got)
	assert.Len(t, got, 64)
	assert.Equal(t, strings.ToUpper(got), got)
}
