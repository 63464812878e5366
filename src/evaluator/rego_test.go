// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package evaluator_test

import (
	"context"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/evaluator"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/facts"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/testutil"
	x509chain "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/translate"
)

func TestRegoEvaluatorModule(t *testing.T) {
	ctx := context.Background()
	module := `package custom

import rego.v1

status := 20 if {
	input.client == "firefox"
} else := 0
`
	ev, err := evaluator.NewRegoEvaluatorFromModule(ctx, "data.custom.status", "custom.rego", module)
	require.NoError(t, err)

	doc := &facts.Document{}
	v, err := ev.Evaluate(ctx, job.Job{Client: job.Firefox, Document: doc})
	require.NoError(t, err)
	assert.Equal(t, evaluator.NameConstraintViolation, v)

	v, err = ev.Evaluate(ctx, job.Job{Client: job.Chrome, Document: doc})
	require.NoError(t, err)
	assert.Equal(t, evaluator.Accept, v)
}

func TestRegoEvaluatorErrors(t *testing.T) {
	ctx := context.Background()

	_, err := evaluator.NewRegoEvaluatorFromModule(ctx, "", "broken.rego", "package broken\nstatus := ")
	assert.ErrorIs(t, err, evaluator.ErrUnknown)

	ev, err := evaluator.NewRegoEvaluatorFromModule(ctx, "data.odd.status", "odd.rego", "package odd\n\nstatus := \"ten\"\n")
	require.NoError(t, err)
	_, err = ev.Evaluate(ctx, job.Job{Client: job.Chrome, Document: &facts.Document{}})
	assert.ErrorIs(t, err, evaluator.ErrUnknown)

	_, err = ev.Evaluate(ctx, job.Job{Client: job.Chrome})
	assert.ErrorIs(t, err, evaluator.ErrUnknown)

	undefined, err := evaluator.NewRegoEvaluatorFromModule(ctx, "data.none.status", "none.rego", "package none\n")
	require.NoError(t, err)
	_, err = undefined.Evaluate(ctx, job.Job{Client: job.Chrome, Document: &facts.Document{}})
	assert.ErrorIs(t, err, evaluator.ErrUnknown)
}

func TestRegoEvaluatorFromPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.rego"), []byte("package p\n\nstatus := 70\n"), 0o644))

	ev, err := evaluator.NewRegoEvaluator(context.Background(), "data.p.status", dir)
	require.NoError(t, err)

	v, err := ev.Evaluate(context.Background(), job.Job{Client: job.Chrome, Document: &facts.Document{}})
	require.NoError(t, err)
	assert.Equal(t, evaluator.ApplicationConstraintFailure, v)
}

func TestDefaultPolicy(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	root := testutil.NewRoot(t, "Policy Root")
	inter := root.Issue(t, "Policy Intermediate", testutil.Options{IsCA: true})
	good := inter.Issue(t, "shop.example", testutil.Options{DNSNames: []string{"shop.example", "*.cdn.example"}})
	expired := inter.Issue(t, "old.example", testutil.Options{
		DNSNames:  []string{"old.example"},
		NotBefore: now.Add(-60 * 24 * time.Hour),
		NotAfter:  now.Add(-24 * time.Hour),
	})
	longLived := inter.Issue(t, "long.example", testutil.Options{
		DNSNames: []string{"long.example"},
		NotAfter: now.Add(500 * 24 * time.Hour),
	})

	ev, err := evaluator.NewRegoEvaluator(ctx, "")
	require.NoError(t, err)
	ev.Now = func() time.Time { return now }

	tests := []struct {
		name   string
		chain  []*x509.Certificate
		roots  []*x509.Certificate
		domain string
		want   evaluator.Verdict
	}{
		{"accepted", []*x509.Certificate{good.Cert, inter.Cert}, []*x509.Certificate{root.Cert}, "shop.example", evaluator.Accept},
		{"wildcard", []*x509.Certificate{good.Cert, inter.Cert}, []*x509.Certificate{root.Cert}, "img.cdn.example", evaluator.Accept},
		{"wildcard depth", []*x509.Certificate{good.Cert, inter.Cert}, []*x509.Certificate{root.Cert}, "a.b.cdn.example", evaluator.CertNotValidForName},
		{"wrong name", []*x509.Certificate{good.Cert, inter.Cert}, []*x509.Certificate{root.Cert}, "other.example", evaluator.CertNotValidForName},
		{"expired", []*x509.Certificate{expired.Cert, inter.Cert}, []*x509.Certificate{root.Cert}, "old.example", evaluator.CertNotTimeValid},
		{"no issuer", []*x509.Certificate{good.Cert}, nil, "shop.example", evaluator.UnknownIssuer},
		{"too long", []*x509.Certificate{longLived.Cert, inter.Cert}, []*x509.Certificate{root.Cert}, "long.example", evaluator.LeafValidForTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := translate.New(x509chain.NewTrustStore(tt.roots...), nil, nil)
			res, err := tr.Translate(ctx, tt.chain, nil, false, false)
			require.NoError(t, err)

			got, err := ev.Evaluate(ctx, job.Job{Client: job.Chrome, Domain: tt.domain, Document: res.Document})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, got.String())
		})
	}
}

func TestDefaultPolicyRevocation(t *testing.T) {
	ctx := context.Background()
	root := testutil.NewRoot(t, "Revocation Root")
	inter := root.Issue(t, "Revocation Intermediate", testutil.Options{IsCA: true})
	leaf := inter.Issue(t, "shop.example", testutil.Options{DNSNames: []string{"shop.example"}})

	ev, err := evaluator.NewRegoEvaluator(ctx, "")
	require.NoError(t, err)

	evidence := func(verified bool, status string) facts.List {
		return facts.List{facts.Bool(true), facts.Bool(verified), facts.Bool(false), facts.Atom(status)}
	}

	tests := []struct {
		name      string
		predicate string
		evidence  facts.List
		want      evaluator.Verdict
	}{
		{"verified OCSP revoked", facts.PredOCSPResponse, evidence(true, "revoked"), evaluator.CertRevoked},
		{"unverified OCSP revoked", facts.PredOCSPResponse, evidence(false, "revoked"), evaluator.Accept},
		{"verified OCSP good", facts.PredOCSPResponse, evidence(true, "good"), evaluator.Accept},
		{"verified staple revoked", facts.PredStapledResponse, evidence(true, "revoked"), evaluator.CertRevoked},
		{"unverified staple revoked", facts.PredStapledResponse, evidence(false, "revoked"), evaluator.Accept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := translate.New(x509chain.NewTrustStore(root.Cert), nil, nil)
			res, err := tr.Translate(ctx, []*x509.Certificate{leaf.Cert, inter.Cert}, nil, false, false)
			require.NoError(t, err)
			res.Document.Append(facts.Block{facts.New(tt.predicate, facts.CertID(0), tt.evidence)})

			got, err := ev.Evaluate(ctx, job.Job{Client: job.Chrome, Domain: "shop.example", Document: res.Document})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, got.String())
		})
	}
}
