// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package facts

import (
	"strconv"
	"strings"
	"sync"
)

// Predicate names shared by the translator, the revocation generator and
// evaluator adapters.
const (
	PredFingerprint     = "fingerprint"
	PredIssuer          = "issuer"
	PredOCSPResponse    = "ocspResponse"
	PredStapledResponse = "stapledResponse"
)

// Predicate is a name/arity pair exported by the fact module.
type Predicate struct {
	Name  string
	Arity int
}

func (p Predicate) String() string { return p.Name + "/" + strconv.Itoa(p.Arity) }

// Exports lists every predicate the fact module declares, in declaration order.
// Evaluator rule sets import the module and rely on this exact list.
var Exports = []Predicate{
	{"basicConstraintsCritical", 2},
	{"basicConstraintsExt", 2},
	{"certificatePolicies", 2},
	{"certificatePoliciesCritical", 2},
	{"certificatePoliciesExt", 2},
	{"commonName", 2},
	{"extendedKeyUsage", 2},
	{"extendedKeyUsageCritical", 2},
	{"extendedKeyUsageExt", 2},
	{PredFingerprint, 2},
	{"inhibitAnyPolicyExt", 2},
	{"isCA", 2},
	{PredIssuer, 2},
	{"keyAlgorithm", 2},
	{"keyLen", 2},
	{"keyUsage", 2},
	{"keyUsageCritical", 2},
	{"keyUsageExt", 2},
	{"nameConstraintsExt", 2},
	{"notAfter", 2},
	{"notBefore", 2},
	{"pathLimit", 2},
	{"policyConstraintsExt", 2},
	{"policyMappingsExt", 3},
	{"san", 2},
	{"sanCritical", 2},
	{"sanExt", 2},
	{"serialNumber", 2},
	{"signatureAlgorithm", 2},
	{"subjectKeyIdentifier", 2},
	{"subjectKeyIdentifierCritical", 2},
	{"subjectKeyIdentifierExt", 2},
	{"version", 2},
	{PredOCSPResponse, 2},
	{PredStapledResponse, 2},
}

var preamble = sync.OnceValue(func() string {
	var b strings.Builder
	b.WriteString(":- module(certs, [\n")
	for i, p := range Exports {
		b.WriteString("    ")
		b.WriteString(p.String())
		if i < len(Exports)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("]).\n")
	b.WriteString(":- style_check(-discontiguous).\n\n")
	return b.String()
})

// Preamble returns the module header declaring [Exports].
func Preamble() string { return preamble() }
