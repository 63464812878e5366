// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row outcomes other than an error text.
const (
	OutcomeOK      = "OK"
	OutcomeSkipped = "SKIPPED"
)

// ErrShortRow is returned for records with fewer than three fields.
var ErrShortRow = errors.New("batch: row needs certificate, sha256 and domain")

// Row is one input record.
type Row struct {
	// Certificate holds the PEM encoded chain, leaf first.
	Certificate []byte
	// SHA256 is echoed into the result unchanged.
	SHA256 string
	Domain string
	// Intermediates lists intermediate ids stored as <id>.pem.
	Intermediates []string
}

// ParseRecord converts a CSV record into a Row. Extra fields are ignored.
func ParseRecord(record []string) (Row, error) {
	if len(record) < 3 {
		return Row{}, fmt.Errorf("%w: got %d fields", ErrShortRow, len(record))
	}
	row := Row{
		Certificate: []byte(record[0]),
		SHA256:      record[1],
		Domain:      record[2],
	}
	if len(record) > 3 {
		for _, id := range strings.Split(record[3], ",") {
			if id = strings.TrimSpace(id); id != "" {
				row.Intermediates = append(row.Intermediates, id)
			}
		}
	}
	return row, nil
}

// Reader reads rows from a headerless CSV stream.
type Reader struct {
	r *csv.Reader
}

// NewReader accepts records with a varying number of fields.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &Reader{r: cr}
}

// Next returns the next row, or io.EOF after the last one.
// A malformed record yields a non-EOF error and the reader stays usable.
func (r *Reader) Next() (Row, error) {
	record, err := r.r.Read()
	if err != nil {
		return Row{}, err
	}
	return ParseRecord(record)
}

// Result is one output record.
type Result struct {
	SHA256  string
	Domain  string
	Outcome string
}

// Writer appends results as CSV, flushing after every row so a partial
// partition remains readable.
type Writer struct {
	w *csv.Writer
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write appends res.
func (w *Writer) Write(res Result) error {
	if err := w.w.Write([]string{res.SHA256, res.Domain, res.Outcome}); err != nil {
		return err
	}
	w.w.Flush()
	return w.w.Error()
}
