// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package translate

import (
	"context"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/facts"
	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/logger"
)

// Result is a translated chain.
type Result struct {
	// Document holds every fact block; the preamble is added when rendered.
	Document *facts.Document
	// Stack is the verified path above the leaf: walked intermediates
	// followed by every discovered trust anchor. Stack[i] has id cert_{i+1}.
	Stack []*x509.Certificate
	// Elapsed is the time spent encoding and linking, excluding revocation.
	Elapsed time.Duration
}

// Translator turns a leaf-first chain into a fact document.
//
// A Translator holds no per-call state and is safe for concurrent use as long
// as its collaborators are.
type Translator struct {
	Encoder    facts.Encoder
	Revocation revocation.Generator
	TrustStore *x509chain.TrustStore
	Logger     logger.Logger
}

// New returns a Translator using the X.509 attribute encoder.
//
// Parameters:
//   - store: Trust anchors scanned during root discovery
//   - gen: Revocation fact generator
//   - log: Destination for "no issuer found" warnings (may be nil)
func New(store *x509chain.TrustStore, gen revocation.Generator, log logger.Logger) *Translator {
	return &Translator{
		Encoder:    facts.X509Encoder{},
		Revocation: gen,
		TrustStore: store,
		Logger:     log,
	}
}

// Translate builds the fact document for chain.
//
// The first element is the leaf (cert_0). Each following supplied
// certificate must verify the signature of the one before it and receives
// the next id and an issuer fact. Trust store entries that issued the last
// walked certificates (or the leaf, when nothing was supplied) are appended
// with their own ids; every match is kept. Finally one revocation block is
// added per consecutive pair of leaf + stack, the staple being considered
// for the first pair only.
//
// Parameters:
//   - ctx: Context for revocation lookups
//   - chain: Leaf-first certificates
//   - stapled: Stapled OCSP response for the leaf, or nil
//   - checkOCSP: Query OCSP responders
//   - staple: Evaluate stapled for the leaf pair
//
// Returns:
//   - *Result: Translated document and verified stack
//   - error: [ErrParsing], [ErrInvalidSignature] or [ErrVerifyEngine]
func (t *Translator) Translate(ctx context.Context, chain []*x509.Certificate, stapled []byte, checkOCSP, staple bool) (*Result, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrParsing, x509chain.ErrEmptyChain)
	}

	start := time.Now()
	doc := &facts.Document{}
	leaf, supplied := chain[0], chain[1:]

	block, err := t.block(leaf, 0)
	if err != nil {
		return nil, err
	}
	doc.Append(block)

	stack := make([]*x509.Certificate, 0, len(supplied)+1)
	prev := leaf
	for _, cert := range supplied {
		id := len(stack) + 1
		ok, err := x509chain.CheckLink(prev, cert)
		if err != nil {
			return nil, fmt.Errorf("%w: cert_%d: %w", ErrVerifyEngine, id, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: cert_%d does not verify cert_%d", ErrInvalidSignature, id, id-1)
		}

		block, err := t.block(cert, id)
		if err != nil {
			return nil, err
		}
		doc.Append(append(block, facts.New(facts.PredIssuer, facts.CertID(id-1), facts.CertID(id))))
		stack = append(stack, cert)
		prev = cert
	}

	// Root discovery candidates carry the id they were given above.
	type candidate struct {
		cert *x509.Certificate
		id   int
	}
	candidates := []candidate{{cert: leaf, id: 0}}
	if len(supplied) > 0 {
		candidates = candidates[:0]
		for i, cert := range supplied {
			candidates = append(candidates, candidate{cert: cert, id: i + 1})
		}
	}

	found := false
	var rootErr error
	if t.TrustStore != nil {
		t.TrustStore.Each(func(_ int, root *x509.Certificate) bool {
			for _, c := range candidates {
				if !x509chain.Issued(root, c.cert) {
					continue
				}
				id := len(stack) + 1
				block, err := t.block(root, id)
				if err != nil {
					rootErr = err
					return false
				}
				doc.Append(append(block, facts.New(facts.PredIssuer, facts.CertID(c.id), facts.CertID(id))))
				stack = append(stack, root)
				found = true
			}
			return true
		})
	}
	if rootErr != nil {
		return nil, rootErr
	}
	if !found {
		t.logf("no issuer found for %s", leaf.Subject.CommonName)
	}
	elapsed := time.Since(start)

	var revocationFacts facts.Block
	subject := leaf
	for i, issuer := range stack {
		opts := revocation.Options{CheckOCSP: checkOCSP}
		if i == 0 {
			opts.Staple = staple
			opts.Stapled = stapled
		}
		if t.Revocation != nil {
			revocationFacts = append(revocationFacts, t.Revocation.Facts(ctx, i, subject, issuer, opts)...)
		}
		subject = issuer
	}
	doc.Append(revocationFacts)

	return &Result{Document: doc, Stack: stack, Elapsed: elapsed}, nil
}

// block encodes cert under id, fingerprint first.
func (t *Translator) block(cert *x509.Certificate, id int) (facts.Block, error) {
	attrs, err := t.Encoder.Encode(cert.Raw, facts.CertID(id))
	if err != nil {
		return nil, fmt.Errorf("%w: cert_%d: %w", ErrParsing, id, err)
	}
	fp := facts.New(facts.PredFingerprint, facts.CertID(id), facts.Str(x509certs.Fingerprint(cert)))
	return append(facts.Block{fp}, attrs...), nil
}

func (t *Translator) logf(format string, v ...any) {
	if t.Logger != nil {
		t.Logger.Printf(format, v...)
	}
}
