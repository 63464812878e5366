// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package facts models the declarative fact base handed to a policy evaluator.
//
// A [Document] is an ordered list of blocks, one per certificate plus one for
// revocation evidence. Rendering produces a [Prolog] module whose export list
// (the preamble) declares every predicate an evaluator may query:
//
//	:- module(certs, [
//	    basicConstraintsCritical/2,
//	    ...
//	    stapledResponse/2
//	]).
//	:- style_check(-discontiguous).
//
//	fingerprint(cert_0, "9F86D0...").
//	commonName(cert_0, "www.example.com").
//	...
//
//	fingerprint(cert_1, "A3C1F2...").
//	...
//	issuer(cert_0, cert_1).
//
// The same document can be exported as structured input for in-process rule
// engines through [Document.Input].
//
// [Prolog]: https://grokipedia.com/page/Prolog
package facts
