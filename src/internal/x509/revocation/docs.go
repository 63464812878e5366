// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package revocation produces the ocspResponse and stapledResponse facts for
// each (subject, issuer) pair of a verified chain.
//
// A stapled response is only evaluated when the caller passes one; a live
// OCSP lookup is only performed when requested and the subject names a
// responder. Both yield a four element list [Valid, Verified, Expired, Status]
// or an empty list when no evidence exists:
//
//	stapledResponse(cert_0, [true, true, false, good]).
//	ocspResponse(cert_0, []).
//
// Responses fetched over HTTP are kept in a [Cache] until their NextUpdate.
// [MemoryCache] is an in-process LRU; [RedisCache] shares responses between runs.
package revocation
