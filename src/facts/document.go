// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package facts

import (
	"io"
	"strings"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/helper/gc"
)

// Fact is one terminated statement, predicate(args...).
type Fact struct {
	Predicate string
	Args      []Term
}

// New returns a fact for predicate with the given arguments.
func New(predicate string, args ...Term) Fact {
	return Fact{Predicate: predicate, Args: args}
}

// String renders the fact in Prolog syntax including the terminating period.
func (f Fact) String() string {
	var b strings.Builder
	f.writeTo(&b)
	return b.String()
}

func (f Fact) writeTo(w io.StringWriter) {
	w.WriteString(f.Predicate)
	w.WriteString("(")
	for i, a := range f.Args {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(a.String())
	}
	w.WriteString(").")
}

// Block is a group of facts rendered without blank lines between them.
type Block []Fact

// Document is an ordered fact base. The zero value is an empty document.
//
// A Document is built by a single goroutine and treated as read-only once
// handed to a job writer or evaluator.
type Document struct {
	Blocks []Block
}

// Append adds b as the next block. Empty blocks are ignored.
func (d *Document) Append(b Block) {
	if len(b) == 0 {
		return
	}
	d.Blocks = append(d.Blocks, b)
}

// Facts returns every fact with the given predicate in document order.
func (d *Document) Facts(predicate string) []Fact {
	var out []Fact
	for _, b := range d.Blocks {
		for _, f := range b {
			if f.Predicate == predicate {
				out = append(out, f)
			}
		}
	}
	return out
}

// Count returns how many facts use predicate.
func (d *Document) Count(predicate string) int { return len(d.Facts(predicate)) }

// WriteBody writes the facts without the preamble. Each block is followed
// by a blank line.
func (d *Document) WriteBody(w io.Writer) error {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	for _, b := range d.Blocks {
		for _, f := range b {
			f.writeTo(buf)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}

	_, err := buf.WriteTo(w)
	return err
}

// Render writes the complete fact module: preamble followed by the body.
func (d *Document) Render(w io.Writer) error {
	if _, err := io.WriteString(w, Preamble()); err != nil {
		return err
	}
	return d.WriteBody(w)
}

// String returns the rendered module.
func (d *Document) String() string {
	var b strings.Builder
	d.Render(&b)
	return b.String()
}

// Input converts the document into a structure suited for rule engines that
// consume JSON-like data. Facts are grouped by predicate; each entry is the
// list of argument values:
//
//	{"issuer": [["cert_0", "cert_1"]], "isCA": [["cert_1", true]], ...}
func (d *Document) Input() map[string]any {
	out := make(map[string]any)
	for _, b := range d.Blocks {
		for _, f := range b {
			args := make([]any, len(f.Args))
			for i, a := range f.Args {
				args[i] = a.Value()
			}
			rows, _ := out[f.Predicate].([]any)
			out[f.Predicate] = append(rows, args)
		}
	}
	return out
}
