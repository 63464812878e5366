// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package evaluator decides whether a client would accept a translated chain.
//
// The decision is an exit status with a fixed meaning:
//
//	 0  Accept
//	10  CertNotTimeValid
//	20  NameConstraintViolation
//	30  CertNotValidForName
//	40  CertRevoked
//	50  PathLenConstraintViolated
//	60  UnknownIssuer
//	70  ApplicationConstraintFailure
//	80  LeafValidForTooLong
//
// Any other status is [Unclassified]. [ProcessEvaluator] obtains the status
// from an external script run against the job directory; [RegoEvaluator]
// obtains it from an Open Policy Agent query over the same facts.
package evaluator
