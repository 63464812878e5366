// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package batch_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/batch"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/evaluator"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/testutil"
	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/logger"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/translate"
)

// recordingEvaluator accepts every job and remembers where it ran.
type recordingEvaluator struct {
	mu   sync.Mutex
	dirs map[string]bool
	jobs []job.Job
}

func (r *recordingEvaluator) Evaluate(_ context.Context, j job.Job) (evaluator.Verdict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirs == nil {
		r.dirs = make(map[string]bool)
	}
	r.dirs[j.Dir] = true
	r.jobs = append(r.jobs, j)
	if _, err := os.Stat(filepath.Join(j.Dir, job.FactsFile)); err != nil {
		return evaluator.Unclassified, err
	}
	if strings.HasPrefix(j.Domain, "revoked.") {
		return evaluator.CertRevoked, nil
	}
	return evaluator.Accept, nil
}

type fixture struct {
	t        *testing.T
	root     *testutil.Node
	inter    *testutil.Node
	certs    string
	ints     string
	out      string
	jobs     string
	stranger *testutil.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		t:     t,
		certs: filepath.Join(base, "certs"),
		ints:  filepath.Join(base, "ints"),
		out:   filepath.Join(base, "out"),
		jobs:  filepath.Join(base, "jobs", "job"),
	}
	for _, dir := range []string{f.certs, f.ints, f.out} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	f.root = testutil.NewRoot(t, "Batch Root")
	f.inter = f.root.Issue(t, "Batch Intermediate", testutil.Options{IsCA: true})
	f.stranger = testutil.NewRoot(t, "Stranger Root").Issue(t, "Stranger Intermediate", testutil.Options{IsCA: true})
	return f
}

// leafRow returns a row whose certificate field carries leaf + intermediate.
func (f *fixture) leafRow(domain string) []string {
	leaf := f.inter.Issue(f.t, domain, testutil.Options{DNSNames: []string{strings.ToLower(domain)}})
	return []string{string(testutil.PEM(leaf.Cert, f.inter.Cert)), x509certs.Fingerprint(leaf.Cert), domain}
}

func (f *fixture) writePartition(n int, rows ...[]string) {
	f.t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(f.t, w.WriteAll(rows))
	require.NoError(f.t, os.WriteFile(batch.InputFile(f.certs, n, batch.DefaultStride), buf.Bytes(), 0o644))
}

func (f *fixture) orchestrator(ev evaluator.Evaluator, workers int) *batch.Orchestrator {
	log := logger.NewCLILogger()
	log.SetOutput(&bytes.Buffer{})
	return &batch.Orchestrator{
		Translator: translate.New(x509chain.NewTrustStore(f.root.Cert), nil, nil),
		Evaluator:  ev,
		JobRoot:    f.jobs,
		Workers:    workers,
		Logger:     log,
		RunID:      "test-run",
	}
}

func (f *fixture) params(start, end int) batch.Params {
	return batch.Params{Client: job.Chrome, CertsPath: f.certs, IntPath: f.ints, OutPath: f.out, Start: start, End: end}
}

func (f *fixture) results(n int) [][]string {
	f.t.Helper()
	data, err := os.ReadFile(batch.OutputFile(f.out, n, batch.DefaultStride))
	require.NoError(f.t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(f.t, err)
	return records
}

func TestProcessSkipsIPLiterals(t *testing.T) {
	f := newFixture(t)
	row := f.leafRow("ignored.example")
	f.writePartition(0,
		[]string{row[0], row[1], "192.0.2.1"},
		[]string{row[0], row[1], "2001:db8::1"},
	)

	ev := &recordingEvaluator{}
	report, err := f.orchestrator(ev, 1).Process(context.Background(), f.params(0, 0))
	require.NoError(t, err)

	data, err := os.ReadFile(batch.OutputFile(f.out, 0, batch.DefaultStride))
	require.NoError(t, err)
	assert.Equal(t, row[1]+",192.0.2.1,SKIPPED\n"+row[1]+",2001:db8::1,SKIPPED\n", string(data))
	assert.Empty(t, ev.jobs)
	assert.Equal(t, 2, report.Skipped)
}

func TestProcessCountsMalformedRecords(t *testing.T) {
	f := newFixture(t)
	first := f.leafRow("first.example")
	second := f.leafRow("second.example")
	f.writePartition(0, first, []string{"only", "two"}, second)

	var logs bytes.Buffer
	o := f.orchestrator(&recordingEvaluator{}, 1)
	o.Logger = logger.NewJSONLogger(&logs, map[string]any{"run_id": "test-run"})

	report, err := o.Process(context.Background(), f.params(0, 0))
	require.NoError(t, err)

	assert.Len(t, f.results(0), 2)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 1, report.Malformed)
	assert.Contains(t, report.String(), "1 malformed records")

	assert.Contains(t, logs.String(), "skipping malformed record")
	assert.Contains(t, logs.String(), `"domain":"first.example"`)
	assert.Contains(t, logs.String(), `"translate_ms"`)
	assert.Contains(t, logs.String(), `"verify_ms"`)
}

func TestProcessOutcomes(t *testing.T) {
	f := newFixture(t)
	good := f.leafRow("Shop.EXAMPLE")
	revoked := f.leafRow("revoked.example")

	leaf := f.inter.Issue(t, "broken.example", testutil.Options{})
	broken := []string{string(testutil.PEM(leaf.Cert, f.stranger.Cert)), x509certs.Fingerprint(leaf.Cert), "broken.example"}
	garbage := []string{"not a certificate", "00", "garbage.example"}

	f.writePartition(2, good, broken, revoked, garbage)

	ev := &recordingEvaluator{}
	report, err := f.orchestrator(ev, 2).Process(context.Background(), f.params(2, 2))
	require.NoError(t, err)

	results := f.results(2)
	require.Len(t, results, 4)

	assert.Equal(t, []string{good[1], "shop.example", batch.OutcomeOK}, results[0])

	assert.Equal(t, broken[1], results[1][0])
	assert.Contains(t, results[1][2], translate.ErrInvalidSignature.Error())

	assert.Equal(t, []string{revoked[1], "revoked.example", "CertRevoked"}, results[2])

	assert.Contains(t, results[3][2], translate.ErrParsing.Error())

	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 3, report.Rejected)
	assert.Empty(t, report.Failed)
	assert.Equal(t, "test-run", report.RunID)

	// Only translated rows reach the evaluator, always in this partition's job dir.
	require.Len(t, ev.jobs, 2)
	for _, j := range ev.jobs {
		assert.True(t, strings.HasPrefix(filepath.Base(j.Dir), "chrome-2-"), j.Dir)
		assert.Equal(t, job.Chrome, j.Client)
	}
}

func TestProcessParallelMatchesSequential(t *testing.T) {
	f := newFixture(t)
	for n := 0; n < 6; n++ {
		f.writePartition(n,
			f.leafRow(fmt.Sprintf("a%d.example", n)),
			f.leafRow(fmt.Sprintf("revoked.b%d.example", n)),
			f.leafRow(fmt.Sprintf("C%d.Example", n)),
		)
	}

	collect := func() []string {
		var all []string
		for n := 0; n < 6; n++ {
			for _, r := range f.results(n) {
				all = append(all, strings.Join(r, ","))
			}
		}
		sort.Strings(all)
		return all
	}

	_, err := f.orchestrator(&recordingEvaluator{}, 1).Process(context.Background(), f.params(0, 5))
	require.NoError(t, err)
	sequential := collect()

	ev := &recordingEvaluator{}
	report, err := f.orchestrator(ev, 4).Process(context.Background(), f.params(0, 5))
	require.NoError(t, err)
	assert.Equal(t, sequential, collect())
	assert.Equal(t, 18, report.Rows)

	// Every job dir belongs to exactly one (partition, worker) pair.
	for dir := range ev.dirs {
		var client string
		var n, w int
		_, err := fmt.Sscanf(strings.ReplaceAll(filepath.Base(dir), "-", " "), "%s %d %d", &client, &n, &w)
		require.NoError(t, err)
		assert.Equal(t, job.Dir(f.jobs, job.Chrome, n, w), dir)
		assert.Less(t, w, 4)
	}
}

func TestProcessPartitionFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.writePartition(0, f.leafRow("a.example"))
	f.writePartition(2, f.leafRow("c.example"))

	report, err := f.orchestrator(&recordingEvaluator{}, 2).Process(context.Background(), f.params(0, 2))
	require.NoError(t, err)

	assert.Equal(t, []int{1}, report.FailedPartitions())
	assert.ErrorIs(t, report.Failed[1], os.ErrNotExist)
	assert.Len(t, f.results(0), 1)
	assert.Len(t, f.results(2), 1)
	assert.Contains(t, report.String(), "1 failed partitions")
}

func TestProcessReconstructsIntermediates(t *testing.T) {
	f := newFixture(t)
	leaf := f.inter.Issue(t, "rebuilt.example", testutil.Options{DNSNames: []string{"rebuilt.example"}})
	testutil.WriteBundle(t, filepath.Join(f.ints, "int-1.pem"), f.inter.Cert)
	f.writePartition(0, []string{string(testutil.PEM(leaf.Cert)), "AA", "rebuilt.example", "int-1"})

	ev := &recordingEvaluator{}
	o := f.orchestrator(ev, 1)
	o.Reconstruct = true
	_, err := o.Process(context.Background(), f.params(0, 0))
	require.NoError(t, err)

	assert.Equal(t, []string{"AA", "rebuilt.example", batch.OutcomeOK}, f.results(0)[0])
	require.Len(t, ev.jobs, 1)
	assert.Equal(t, 3, ev.jobs[0].Document.Count("fingerprint"))

	f.writePartition(1, []string{string(testutil.PEM(leaf.Cert)), "BB", "rebuilt.example", "missing"})
	_, err = o.Process(context.Background(), f.params(1, 1))
	require.NoError(t, err)
	assert.Contains(t, f.results(1)[0][2], translate.ErrParsing.Error())
}

func TestProcessCancelled(t *testing.T) {
	f := newFixture(t)
	f.writePartition(0, f.leafRow("a.example"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := &recordingEvaluator{}
	report, err := f.orchestrator(ev, 2).Process(ctx, f.params(0, 0))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, ev.jobs)
}

func TestProcessInvalidParams(t *testing.T) {
	f := newFixture(t)
	o := f.orchestrator(&recordingEvaluator{}, 1)

	_, err := o.Process(context.Background(), f.params(3, 1))
	assert.ErrorIs(t, err, batch.ErrParams)

	p := f.params(0, 0)
	p.Client = "opera"
	_, err = o.Process(context.Background(), p)
	assert.ErrorIs(t, err, batch.ErrParams)
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	f.writePartition(0, f.leafRow("a.example"), f.leafRow("revoked.example"))
	f.writePartition(1, f.leafRow("b.example"), []string{"x", "y", "10.0.0.1"})

	_, err := f.orchestrator(&recordingEvaluator{}, 2).Process(context.Background(), f.params(0, 1))
	require.NoError(t, err)

	s, err := batch.Summarize(f.out)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Files)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, map[string]int{"OK": 2, "CertRevoked": 1, "SKIPPED": 1}, s.Outcomes)
	assert.Equal(t, []string{"OK", "CertRevoked", "SKIPPED"}, s.Sorted())

	table := s.RenderTable()
	assert.Contains(t, table, "Outcome")
	assert.Contains(t, table, "Share")
	assert.NotContains(t, table, "OUTCOME")
	assert.Contains(t, table, "50.0%")
}

func TestParseRecord(t *testing.T) {
	row, err := batch.ParseRecord([]string{"pem", "sha", "Example.com", "a, b,,c", "extra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, row.Intermediates)
	assert.Equal(t, "Example.com", row.Domain)

	_, err = batch.ParseRecord([]string{"pem", "sha"})
	assert.ErrorIs(t, err, batch.ErrShortRow)
}
