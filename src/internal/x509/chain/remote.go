// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrNoPeerCertificates is returned when a handshake yields no certificates.
var ErrNoPeerCertificates = errors.New("x509chain: no certificates received from server")

// Remote is a chain captured from a live TLS handshake.
type Remote struct {
	*Chain
	// Staple is the OCSP response stapled by the server, if any.
	Staple []byte
}

// FetchRemoteChain establishes a TLS connection to the target host and
// returns the chain exactly as presented during the handshake, together with
// any stapled OCSP response. The chain is not verified.
func FetchRemoteChain(ctx context.Context, hostname string, port int, timeout time.Duration) (*Remote, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		// We just want the cert chain, not to verify
		Config: &tls.Config{InsecureSkipVerify: true, ServerName: hostname},
	}

	addr := net.JoinHostPort(hostname, strconv.Itoa(port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, ErrNoPeerCertificates
	}

	ch, err := New(state.PeerCertificates...)
	if err != nil {
		return nil, err
	}

	return &Remote{Chain: ch, Staple: state.OCSPResponse}, nil
}
