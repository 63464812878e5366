// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package evaluator

// Verdict is the evaluator's decision about one chain.
type Verdict int

const (
	Accept Verdict = iota
	CertNotTimeValid
	NameConstraintViolation
	CertNotValidForName
	CertRevoked
	PathLenConstraintViolated
	UnknownIssuer
	ApplicationConstraintFailure
	LeafValidForTooLong
	// Unclassified covers every exit status outside the table.
	Unclassified
)

var verdictNames = [...]string{
	Accept:                       "Accept",
	CertNotTimeValid:             "CertNotTimeValid",
	NameConstraintViolation:      "NameConstraintViolation",
	CertNotValidForName:          "CertNotValidForName",
	CertRevoked:                  "CertRevoked",
	PathLenConstraintViolated:    "PathLenConstraintViolated",
	UnknownIssuer:                "UnknownIssuer",
	ApplicationConstraintFailure: "ApplicationConstraintFailure",
	LeafValidForTooLong:          "LeafValidForTooLong",
	Unclassified:                 "UnknownError",
}

var statusVerdicts = map[int]Verdict{
	0:  Accept,
	10: CertNotTimeValid,
	20: NameConstraintViolation,
	30: CertNotValidForName,
	40: CertRevoked,
	50: PathLenConstraintViolated,
	60: UnknownIssuer,
	70: ApplicationConstraintFailure,
	80: LeafValidForTooLong,
}

// Classify maps an evaluator exit status to its verdict.
func Classify(status int) Verdict {
	if v, ok := statusVerdicts[status]; ok {
		return v
	}
	return Unclassified
}

func (v Verdict) String() string {
	if v < 0 || int(v) >= len(verdictNames) {
		return verdictNames[Unclassified]
	}
	return verdictNames[v]
}

// PolicyViolation is returned by [Verify] for every verdict except [Accept].
type PolicyViolation struct {
	Verdict Verdict
}

// Error returns the verdict name, which is also the row outcome.
func (e *PolicyViolation) Error() string { return e.Verdict.String() }
