// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
)

// RenderASCIITree renders the certificate chain as an ASCII tree diagram,
// one line per certificate labelled with its fact identifier.
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
func (ch *Chain) RenderASCIITree() string {
	var result strings.Builder
	for i, cert := range ch.Certs {
		connector := "├── "
		if i == len(ch.Certs)-1 {
			connector = "└── "
		}
		fmt.Fprintf(&result, "%scert_%d %s (%s)\n", connector, i, cert.Subject.CommonName, ch.role(i))
	}

	return result.String()
}

// RenderTable renders the certificate chain as a formatted markdown table.
//
// It displays the fact identifier, role, subject, issuer, expiry, key and a
// shortened fingerprint for every certificate using tablewriter.
//
// Returns:
//   - string: Markdown table representation of the certificate chain
func (ch *Chain) RenderTable() string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header([]string{"ID", "Role", "Subject", "Issuer", "Valid Until", "Key", "SHA-256"})

	var rows [][]string
	for i, cert := range ch.Certs {
		rows = append(rows, []string{
			fmt.Sprintf("cert_%d", i),
			ch.role(i),
			cert.Subject.CommonName,
			cert.Issuer.CommonName,
			cert.NotAfter.Format("2006-01-02"),
			keyDescription(cert),
			x509certs.Fingerprint(cert)[:16],
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// role determines the role of the certificate at index.
func (ch *Chain) role(index int) string {
	cert := ch.Certs[index]
	switch {
	case index == 0 && len(ch.Certs) == 1 && IsSelfSigned(cert):
		return "Self-Signed Certificate"
	case index == 0:
		return "Leaf"
	case IsSelfSigned(cert):
		return "Root CA"
	default:
		return "Intermediate CA"
	}
}

func keyDescription(cert *x509.Certificate) string {
	switch k := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return fmt.Sprintf("%d-bit RSA", k.Size()*8)
	case *ecdsa.PublicKey:
		return fmt.Sprintf("%d-bit ECDSA", k.Curve.Params().BitSize)
	case ed25519.PublicKey:
		return "Ed25519"
	default:
		return "unknown"
	}
}
