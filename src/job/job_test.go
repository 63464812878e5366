// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package job_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/facts"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
)

func sampleDocument() *facts.Document {
	doc := &facts.Document{}
	doc.Append(facts.Block{
		facts.New(facts.PredFingerprint, facts.CertID(0), facts.Str("AB")),
		facts.New("commonName", facts.CertID(0), facts.Str("leaf.example")),
	})
	return doc
}

func TestDir(t *testing.T) {
	tests := []struct {
		client    job.Client
		partition int
		worker    int
		want      string
	}{
		{job.Chrome, 0, 0, "jobs/chrome-0-0"},
		{job.Firefox, 300, 2, "jobs/firefox-300-2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := job.Dir("jobs", tt.client, tt.partition, tt.worker)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
			assert.Equal(t, got, job.Dir("jobs", tt.client, tt.partition, tt.worker))
		})
	}

	assert.NotEqual(t, job.Dir("jobs", job.Chrome, 1, 0), job.Dir("jobs", job.Chrome, 1, 1))
	assert.NotEqual(t, job.Dir("jobs", job.Chrome, 1, 0), job.Dir("jobs", job.Firefox, 1, 0))
}

func TestRoot(t *testing.T) {
	t.Setenv(job.SuffixEnv, "")
	assert.Equal(t, "jobs", job.Root("jobs"))

	t.Setenv(job.SuffixEnv, "-run7")
	assert.Equal(t, "jobs-run7", job.Root("jobs"))
}

func TestParseClient(t *testing.T) {
	c, err := job.ParseClient("Chrome")
	require.NoError(t, err)
	assert.Equal(t, job.Chrome, c)

	c, err = job.ParseClient("firefox")
	require.NoError(t, err)
	assert.Equal(t, job.Firefox, c)

	_, err = job.ParseClient("netscape")
	assert.ErrorIs(t, err, job.ErrUnknownClient)
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "chrome-0-0")
	j := job.Job{Dir: dir, Client: job.Chrome, Domain: "leaf.example", Document: sampleDocument()}

	require.NoError(t, job.Write(j))

	certs, err := os.ReadFile(filepath.Join(dir, job.FactsFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(certs), facts.Preamble()))
	assert.Contains(t, string(certs), "fingerprint(cert_0, \"AB\").\ncommonName(cert_0, \"leaf.example\").\n")

	env, err := os.ReadFile(filepath.Join(dir, job.EnvFile))
	require.NoError(t, err)
	assert.Equal(t, ":- module(env, [domain/1, client/1]).\ndomain(\"leaf.example\").\nclient(chrome).\n", string(env))
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	first := job.Job{Dir: dir, Client: job.Firefox, Domain: "a.example", Document: sampleDocument()}
	require.NoError(t, job.Write(first))

	second := first
	second.Domain = "b.example"
	second.Document = &facts.Document{}
	require.NoError(t, job.Write(second))

	certs, err := os.ReadFile(filepath.Join(dir, job.FactsFile))
	require.NoError(t, err)
	assert.Equal(t, facts.Preamble(), string(certs))

	env, err := os.ReadFile(filepath.Join(dir, job.EnvFile))
	require.NoError(t, err)
	assert.Contains(t, string(env), `domain("b.example").`)
}

func TestWritePersistenceError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := job.Write(job.Job{Dir: filepath.Join(blocker, "job"), Client: job.Chrome, Document: sampleDocument()})
	assert.ErrorIs(t, err, job.ErrPersistence)

	err = job.Write(job.Job{Dir: t.TempDir(), Client: job.Chrome})
	assert.ErrorIs(t, err, job.ErrPersistence)
}
