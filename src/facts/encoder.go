// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package facts

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrEncode is returned when a certificate cannot be decoded for encoding.
var ErrEncode = errors.New("facts: cannot decode certificate")

// Encoder turns one DER certificate into its attribute facts under id.
//
// Implementations must not emit fingerprint or issuer facts; the translator
// owns those.
type Encoder interface {
	Encode(der []byte, id Atom) (Block, error)
}

// X509Encoder is the default [Encoder] built on crypto/x509.
type X509Encoder struct{}

var (
	oidSAN               = asn1.ObjectIdentifier{2, 5, 29, 17}
	oidBasicConstraints  = asn1.ObjectIdentifier{2, 5, 29, 19}
	oidKeyUsage          = asn1.ObjectIdentifier{2, 5, 29, 15}
	oidExtKeyUsage       = asn1.ObjectIdentifier{2, 5, 29, 37}
	oidCertPolicies      = asn1.ObjectIdentifier{2, 5, 29, 32}
	oidSubjectKeyID      = asn1.ObjectIdentifier{2, 5, 29, 14}
	oidNameConstraints   = asn1.ObjectIdentifier{2, 5, 29, 30}
	oidInhibitAnyPolicy  = asn1.ObjectIdentifier{2, 5, 29, 54}
	oidPolicyConstraints = asn1.ObjectIdentifier{2, 5, 29, 36}
	oidPolicyMappings    = asn1.ObjectIdentifier{2, 5, 29, 33}
)

var keyUsageNames = []struct {
	bit  x509.KeyUsage
	name Atom
}{
	{x509.KeyUsageDigitalSignature, "digitalSignature"},
	{x509.KeyUsageContentCommitment, "contentCommitment"},
	{x509.KeyUsageKeyEncipherment, "keyEncipherment"},
	{x509.KeyUsageDataEncipherment, "dataEncipherment"},
	{x509.KeyUsageKeyAgreement, "keyAgreement"},
	{x509.KeyUsageCertSign, "keyCertSign"},
	{x509.KeyUsageCRLSign, "cRLSign"},
	{x509.KeyUsageEncipherOnly, "encipherOnly"},
	{x509.KeyUsageDecipherOnly, "decipherOnly"},
}

var extKeyUsageNames = map[x509.ExtKeyUsage]Atom{
	x509.ExtKeyUsageAny:             "anyExtendedKeyUsage",
	x509.ExtKeyUsageServerAuth:      "serverAuth",
	x509.ExtKeyUsageClientAuth:      "clientAuth",
	x509.ExtKeyUsageCodeSigning:     "codeSigning",
	x509.ExtKeyUsageEmailProtection: "emailProtection",
	x509.ExtKeyUsageTimeStamping:    "timeStamping",
	x509.ExtKeyUsageOCSPSigning:     "ocspSigning",
}

// Encode implements [Encoder].
func (X509Encoder) Encode(der []byte, id Atom) (Block, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	var b Block
	add := func(pred string, args ...Term) {
		b = append(b, New(pred, append([]Term{id}, args...)...))
	}

	add("serialNumber", Str(hex.EncodeToString(cert.SerialNumber.Bytes())))
	add("version", Int(cert.Version))
	add("signatureAlgorithm", Str(cert.SignatureAlgorithm.String()))
	add("notBefore", Int(cert.NotBefore.Unix()))
	add("notAfter", Int(cert.NotAfter.Unix()))
	add("commonName", Str(cert.Subject.CommonName))

	algo, bits := publicKeyInfo(cert.PublicKey)
	add("keyAlgorithm", Str(algo))
	add("keyLen", Int(bits))

	present, critical := extension(cert, oidSAN)
	add("sanExt", Bool(present))
	add("sanCritical", Bool(critical))
	for _, name := range cert.DNSNames {
		add("san", Str(name))
	}

	present, critical = extension(cert, oidBasicConstraints)
	add("basicConstraintsExt", Bool(present))
	add("basicConstraintsCritical", Bool(critical))
	add("isCA", Bool(cert.BasicConstraintsValid && cert.IsCA))
	add("pathLimit", pathLimit(cert))

	present, critical = extension(cert, oidKeyUsage)
	add("keyUsageExt", Bool(present))
	add("keyUsageCritical", Bool(critical))
	for _, ku := range keyUsageNames {
		if cert.KeyUsage&ku.bit != 0 {
			add("keyUsage", ku.name)
		}
	}

	present, critical = extension(cert, oidExtKeyUsage)
	add("extendedKeyUsageExt", Bool(present))
	add("extendedKeyUsageCritical", Bool(critical))
	for _, eku := range cert.ExtKeyUsage {
		if name, ok := extKeyUsageNames[eku]; ok {
			add("extendedKeyUsage", name)
		}
	}
	for _, oid := range cert.UnknownExtKeyUsage {
		add("extendedKeyUsage", Str(oid.String()))
	}

	present, critical = extension(cert, oidCertPolicies)
	add("certificatePoliciesExt", Bool(present))
	add("certificatePoliciesCritical", Bool(critical))
	for _, oid := range cert.PolicyIdentifiers {
		add("certificatePolicies", Str(oid.String()))
	}

	present, critical = extension(cert, oidSubjectKeyID)
	add("subjectKeyIdentifierExt", Bool(present))
	add("subjectKeyIdentifierCritical", Bool(critical))
	if len(cert.SubjectKeyId) > 0 {
		add("subjectKeyIdentifier", Str(hex.EncodeToString(cert.SubjectKeyId)))
	}

	present, _ = extension(cert, oidNameConstraints)
	add("nameConstraintsExt", Bool(present))
	present, _ = extension(cert, oidInhibitAnyPolicy)
	add("inhibitAnyPolicyExt", Bool(present))
	present, _ = extension(cert, oidPolicyConstraints)
	add("policyConstraintsExt", Bool(present))
	present, critical = extension(cert, oidPolicyMappings)
	add("policyMappingsExt", Bool(present), Bool(critical))

	return b, nil
}

func extension(cert *x509.Certificate, oid asn1.ObjectIdentifier) (present, critical bool) {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oid) {
			return true, ext.Critical
		}
	}
	return false, false
}

func pathLimit(cert *x509.Certificate) Term {
	switch {
	case !cert.BasicConstraintsValid || !cert.IsCA:
		return Atom("none")
	case cert.MaxPathLen > 0:
		return Int(cert.MaxPathLen)
	case cert.MaxPathLen == 0 && cert.MaxPathLenZero:
		return Int(0)
	default:
		return Atom("none")
	}
}

func publicKeyInfo(pub any) (string, int) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return "RSA", k.N.BitLen()
	case *ecdsa.PublicKey:
		return "ECDSA", k.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}
