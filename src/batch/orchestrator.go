// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package batch

import (
	"context"
	"crypto/x509"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/evaluator"
	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/logger"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/translate"
)

// DefaultStride is the distance between partition file numbers.
const DefaultStride = 100

// ErrParams is returned for an unusable [Params] or [Orchestrator].
var ErrParams = errors.New("batch: invalid parameters")

// Params selects the partitions of one run.
type Params struct {
	Client    job.Client
	CertsPath string // directory of certs-list_part<k>.csv
	IntPath   string // directory of <id>.pem intermediates
	OutPath   string // directory receiving evaluation-result_part<k>.csv
	Start     int    // first partition, inclusive
	End       int    // last partition, inclusive
	CheckOCSP bool
}

// InputFile returns the input file of partition n.
func InputFile(dir string, n, stride int) string {
	return filepath.Join(dir, fmt.Sprintf("certs-list_part%d.csv", n*stride))
}

// OutputFile returns the result file of partition n.
func OutputFile(dir string, n, stride int) string {
	return filepath.Join(dir, fmt.Sprintf("evaluation-result_part%d.csv", n*stride))
}

// Orchestrator evaluates partitions of a dataset over a fixed worker pool.
//
// Each worker owns one job directory per (client, partition) it touches, so
// rows never share job files. The translator's trust store is loaded once by
// the caller and only read here.
type Orchestrator struct {
	Translator *translate.Translator
	Evaluator  evaluator.Evaluator
	JobRoot    string
	Workers    int
	Stride     int
	// Reconstruct extends each row's chain with its listed intermediates.
	Reconstruct bool
	Logger      logger.Logger
	// RunID tags logs and the report; a random id is used when empty.
	RunID string
}

// Process runs partitions Start..End. A partition whose files cannot be
// opened or created is recorded in the report and does not affect the others.
// Cancelling ctx stops every worker before its next row.
//
// Returns:
//   - *Report: Counters and failed partitions (also on cancellation)
//   - error: [ErrParams], or ctx's error when cancelled
func (o *Orchestrator) Process(ctx context.Context, p Params) (*Report, error) {
	if p.End < p.Start || p.Start < 0 {
		return nil, fmt.Errorf("%w: start %d, end %d", ErrParams, p.Start, p.End)
	}
	if o.Translator == nil || o.Evaluator == nil {
		return nil, fmt.Errorf("%w: translator and evaluator are required", ErrParams)
	}
	if _, err := job.ParseClient(p.Client.String()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParams, err)
	}

	runID := o.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	workers := max(o.Workers, 1)
	report := newReport(runID, p.End-p.Start+1)
	start := time.Now()

	partitions := make(chan int, report.Partitions)
	for n := p.Start; n <= p.End; n++ {
		partitions <- n
	}
	close(partitions)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for n := range partitions {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := o.partition(gctx, p, n, w, report); err != nil {
					report.fail(n, err)
					o.logf("partition %d failed: %v", n, err)
					if gctx.Err() != nil {
						return gctx.Err()
					}
				}
			}
			return nil
		})
	}

	err := g.Wait()
	report.Elapsed = time.Since(start)
	return report, err
}

// partition processes one input file sequentially on worker w.
func (o *Orchestrator) partition(ctx context.Context, p Params, n, w int, report *Report) error {
	stride := o.stride()

	in, err := os.Open(InputFile(p.CertsPath, n, stride))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(OutputFile(p.OutPath, n, stride))
	if err != nil {
		return err
	}
	defer out.Close()

	reader := NewReader(in)
	writer := NewWriter(out)
	lower := cases.Lower(language.Und)
	dir := job.Dir(o.JobRoot, p.Client, n, w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) || errors.Is(err, ErrShortRow) {
			o.logf("partition %d: skipping malformed record: %v", n, err)
			report.malformed()
			continue
		}
		if err != nil {
			return err
		}

		res := o.row(ctx, p, row, dir, lower)
		if err := writer.Write(res); err != nil {
			return err
		}
		report.count(res.Outcome)
	}
}

// row evaluates one record. Every failure becomes the outcome text.
func (o *Orchestrator) row(ctx context.Context, p Params, row Row, dir string, lower cases.Caser) Result {
	if _, err := netip.ParseAddr(row.Domain); err == nil {
		o.logf("Skipping IP %s", row.Domain)
		return Result{SHA256: row.SHA256, Domain: row.Domain, Outcome: OutcomeSkipped}
	}

	domain := lower.String(row.Domain)
	res := Result{SHA256: row.SHA256, Domain: domain}

	var translateTime, verifyTime time.Duration
	err := func() error {
		chain, err := o.chain(row, p.IntPath)
		if err != nil {
			return err
		}

		started := time.Now()
		tr, err := o.Translator.Translate(ctx, chain, nil, p.CheckOCSP, false)
		translateTime = time.Since(started)
		if err != nil {
			return err
		}

		j := job.Job{Dir: dir, Client: p.Client, Domain: domain, Document: tr.Document}
		if err := job.Write(j); err != nil {
			return err
		}

		started = time.Now()
		defer func() { verifyTime = time.Since(started) }()
		return evaluator.Verify(ctx, o.Evaluator, j)
	}()

	res.Outcome = OutcomeOK
	if err != nil {
		res.Outcome = err.Error()
	}

	if fl, ok := o.Logger.(logger.FieldLogger); ok {
		fl.WithFields(map[string]any{
			"domain":       domain,
			"translate_ms": translateTime.Milliseconds(),
			"verify_ms":    verifyTime.Milliseconds(),
		}).Printf("%s,%s", res.SHA256, res.Outcome)
	} else {
		o.logf("%s,%s", res.SHA256, res.Outcome)
	}
	return res
}

// chain decodes the row's certificates, adding stored intermediates when enabled.
func (o *Orchestrator) chain(row Row, intPath string) ([]*x509.Certificate, error) {
	decoder := x509certs.New()
	certs, err := decoder.DecodeMultiple(row.Certificate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", translate.ErrParsing, err)
	}
	if !o.Reconstruct {
		return certs, nil
	}

	for _, id := range row.Intermediates {
		data, err := os.ReadFile(filepath.Join(intPath, filepath.Base(id)+".pem"))
		if err != nil {
			return nil, fmt.Errorf("%w: intermediate %s: %w", translate.ErrParsing, id, err)
		}
		more, err := decoder.DecodeMultiple(data)
		if err != nil {
			return nil, fmt.Errorf("%w: intermediate %s: %w", translate.ErrParsing, id, err)
		}
		certs = append(certs, more...)
	}
	return certs, nil
}

func (o *Orchestrator) stride() int {
	if o.Stride > 0 {
		return o.Stride
	}
	return DefaultStride
}

func (o *Orchestrator) logf(format string, v ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, v...)
	}
}
