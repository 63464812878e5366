// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package translate converts a captured certificate chain into the fact
// document read by the policy evaluator.
//
// Identifiers are assigned leaf first and strictly increase: cert_0 is the
// leaf, supplied intermediates follow in order, then every trust anchor that
// issued one of them. Issuer facts link each certificate to the one it was
// verified or discovered against:
//
//	fingerprint(cert_1, "9F86D0...").
//	serialNumber(cert_1, "01").
//	...
//	issuer(cert_0, cert_1).
//
// Translation either yields a complete document or an error; callers never
// see a partial result.
package translate
