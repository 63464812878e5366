// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revocation

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/facts"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/logger"
)

// ErrNoResponder is returned when a certificate names no OCSP responder.
var ErrNoResponder = errors.New("revocation: certificate has no OCSP responder")

// HTTPConfig holds HTTP client configuration for OCSP lookups.
type HTTPConfig struct {
	Timeout   time.Duration // HTTP request timeout
	Version   string        // Application version for User-Agent
	UserAgent string        // Custom User-Agent string, if empty will be constructed from Version

	mu     sync.Mutex
	client *http.Client
}

// NewHTTPConfig creates a new HTTP configuration with a default timeout of
// 10 seconds and the provided application version.
func NewHTTPConfig(version string) *HTTPConfig {
	return &HTTPConfig{
		Timeout: 10 * time.Second,
		Version: version,
	}
}

// GetUserAgent returns the User-Agent string, constructing it if not set.
func (c *HTTPConfig) GetUserAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return fmt.Sprintf("TLS-Cert-Policy-Verifier/%s (+https://github.com/H0llyW00dzZ/tls-cert-policy-verifier)", c.Version)
}

// Client returns an HTTP client configured with the current timeout.
//
// Thread Safety: Safe for concurrent use.
func (c *HTTPConfig) Client() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		c.client = &http.Client{Timeout: c.Timeout}
		return c.client
	}

	if c.client.Timeout != c.Timeout {
		c.client.Timeout = c.Timeout
	}

	return c.client
}

// Options selects which evidence is gathered for one (subject, issuer) pair.
type Options struct {
	// CheckOCSP performs a live (or cached) OCSP lookup.
	CheckOCSP bool
	// Staple evaluates Stapled as the subject's stapled response.
	Staple bool
	// Stapled is the raw stapled OCSP response, if the client received one.
	Stapled []byte
}

// Generator produces revocation facts for one (subject, issuer) pair of a chain.
//
// index is the position of subject in the verified stack; facts are keyed by
// [facts.CertID] of that index.
type Generator interface {
	Facts(ctx context.Context, index int, subject, issuer *x509.Certificate, opts Options) facts.Block
}

// Evidence is the evaluated content of one OCSP response.
type Evidence struct {
	Valid    bool   // response parsed and reported a successful status
	Verified bool   // signature verifies against the issuer and the serial matches
	Expired  bool   // NextUpdate has passed
	Status   string // good, revoked or unknown
}

// Terms renders e as [Valid, Verified, Expired, Status].
func (e Evidence) Terms() facts.List {
	return facts.List{facts.Bool(e.Valid), facts.Bool(e.Verified), facts.Bool(e.Expired), facts.Atom(e.Status)}
}

var unusable = Evidence{Status: "unknown"}

// Evaluate inspects a raw OCSP response for subject as issued by issuer.
func Evaluate(raw []byte, subject, issuer *x509.Certificate, now time.Time) Evidence {
	resp, err := ocsp.ParseResponse(raw, nil)
	if err != nil {
		return unusable
	}

	ev := Evidence{Valid: true, Status: statusName(resp.Status)}
	if _, err := ocsp.ParseResponseForCert(raw, subject, issuer); err == nil {
		ev.Verified = true
	}
	if !resp.NextUpdate.IsZero() && now.After(resp.NextUpdate) {
		ev.Expired = true
	}
	return ev
}

func statusName(status int) string {
	switch status {
	case ocsp.Good:
		return "good"
	case ocsp.Revoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// OCSPGenerator is the default [Generator]. It evaluates stapled responses
// and, when asked, queries the subject's OCSP responder through Cache.
type OCSPGenerator struct {
	HTTP   *HTTPConfig
	Cache  Cache
	Logger logger.Logger
	Now    func() time.Time
}

// NewOCSPGenerator returns a generator with an in-memory cache.
func NewOCSPGenerator(version string, log logger.Logger) *OCSPGenerator {
	return &OCSPGenerator{
		HTTP:   NewHTTPConfig(version),
		Cache:  NewMemoryCache(DefaultMemoryCacheConfig),
		Logger: log,
		Now:    time.Now,
	}
}

// Facts implements [Generator]. It always emits exactly one stapledResponse
// and one ocspResponse fact; an empty list means no evidence was requested
// or available.
func (g *OCSPGenerator) Facts(ctx context.Context, index int, subject, issuer *x509.Certificate, opts Options) facts.Block {
	id := facts.CertID(index)
	now := g.now()

	stapled := facts.List{}
	if opts.Staple && len(opts.Stapled) > 0 {
		stapled = Evaluate(opts.Stapled, subject, issuer, now).Terms()
	}

	online := facts.List{}
	if opts.CheckOCSP && len(subject.OCSPServer) > 0 {
		raw, err := g.lookup(ctx, subject, issuer)
		if err != nil {
			g.logf("OCSP lookup for %s failed: %v", id, err)
			online = unusable.Terms()
		} else {
			online = Evaluate(raw, subject, issuer, now).Terms()
		}
	}

	return facts.Block{
		facts.New(facts.PredStapledResponse, id, stapled),
		facts.New(facts.PredOCSPResponse, id, online),
	}
}

// lookup returns the raw OCSP response for subject, from cache when fresh.
func (g *OCSPGenerator) lookup(ctx context.Context, subject, issuer *x509.Certificate) ([]byte, error) {
	if len(subject.OCSPServer) == 0 {
		return nil, ErrNoResponder
	}

	key := CacheKey(subject, issuer)
	if g.Cache != nil {
		if raw, ok, err := g.Cache.Get(ctx, key); err != nil {
			g.logf("OCSP cache read failed: %v", err)
		} else if ok {
			return raw, nil
		}
	}

	reqData, err := ocsp.CreateRequest(subject, issuer, &ocsp.RequestOptions{Hash: crypto.SHA1})
	if err != nil {
		return nil, fmt.Errorf("failed to create OCSP request: %w", err)
	}

	// Make HTTP POST request to OCSP server (RFC 6960)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, subject.OCSPServer[0], bytes.NewReader(reqData))
	if err != nil {
		return nil, fmt.Errorf("failed to create OCSP HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/ocsp-request")
	req.Header.Set("Accept", "application/ocsp-response")
	req.Header.Set("User-Agent", g.HTTP.GetUserAgent())

	resp, err := g.HTTP.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("OCSP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCSP server returned status %d", resp.StatusCode)
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read OCSP response: %w", err)
	}
	raw := append([]byte(nil), buf.Bytes()...)

	if g.Cache != nil {
		if parsed, err := ocsp.ParseResponse(raw, nil); err == nil && parsed.NextUpdate.After(g.now()) {
			if err := g.Cache.Put(ctx, key, raw, parsed.NextUpdate.Sub(g.now())); err != nil {
				g.logf("OCSP cache write failed: %v", err)
			}
		}
	}

	return raw, nil
}

// CacheKey identifies a response by issuer key and subject serial.
func CacheKey(subject, issuer *x509.Certificate) string {
	sum := sha256.Sum256(issuer.RawSubjectPublicKeyInfo)
	return hex.EncodeToString(sum[:]) + ":" + subject.SerialNumber.Text(16)
}

func (g *OCSPGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *OCSPGenerator) logf(format string, v ...any) {
	if g.Logger != nil {
		g.Logger.Printf(format, v...)
	}
}
