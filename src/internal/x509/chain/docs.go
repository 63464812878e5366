// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain implements [X.509] certificate chain primitives.
// It provides capabilities to:
//   - Hold leaf-first chains decoded from PEM or DER input.
//   - Check signature linkage between consecutive chain members.
//   - Decide the structural "issued" relation used for trust anchor discovery.
//   - Load a trust store once and share it read-only across workers.
//   - Render chains as tables or ASCII trees.
//   - Capture chains and stapled OCSP responses from live TLS endpoints.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
