// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package facts

import (
	"regexp"
	"strconv"
	"strings"
)

// Term is a single argument of a fact.
type Term interface {
	// String returns the term in Prolog syntax.
	String() string
	// Value returns the term as a plain Go value (string, int64, bool or []any).
	Value() any
}

// Atom is a Prolog atom such as cert_0 or serverAuth.
type Atom string

// Str is a double-quoted Prolog string.
type Str string

// Int is an integer term.
type Int int64

// Bool renders as the atoms true and false.
type Bool bool

// List is a Prolog list of terms.
type List []Term

var plainAtom = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)

func (a Atom) String() string {
	if plainAtom.MatchString(string(a)) {
		return string(a)
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(string(a)) + "'"
}

func (a Atom) Value() any { return string(a) }

func (s Str) String() string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(string(s)) + `"`
}

func (s Str) Value() any { return string(s) }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (i Int) Value() any { return int64(i) }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (b Bool) Value() any { return bool(b) }

func (l List) String() string {
	parts := make([]string, len(l))
	for i, t := range l {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l List) Value() any {
	out := make([]any, len(l))
	for i, t := range l {
		out[i] = t.Value()
	}
	return out
}

// CertID returns the logical identifier of the n-th certificate in a chain.
func CertID(n int) Atom { return Atom("cert_" + strconv.Itoa(n)) }
