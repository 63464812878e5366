// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/facts"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/helper/gc"
)

const (
	// FactsFile holds the certs module inside a job directory.
	FactsFile = "certs.pl"
	// EnvFile holds the env module inside a job directory.
	EnvFile = "env.pl"
	// SuffixEnv names the environment variable appended to the job root.
	SuffixEnv = "X509_POLICY_JOB_SUFFIX"
)

// ErrPersistence wraps any failure to create or durably write a job.
var ErrPersistence = errors.New("job: persistence error")

// ErrUnknownClient is returned by [ParseClient].
var ErrUnknownClient = errors.New("job: unknown client")

// Client is a browser whose trust policy the evaluator applies.
type Client string

const (
	Chrome  Client = "chrome"
	Firefox Client = "firefox"
)

// Clients lists every supported client.
var Clients = []Client{Chrome, Firefox}

// ParseClient returns the client named s (case-insensitive).
func ParseClient(s string) (Client, error) {
	for _, c := range Clients {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClient, s)
}

func (c Client) String() string { return string(c) }

// Job is one evaluation unit: a fact document plus its context.
type Job struct {
	Dir      string
	Client   Client
	Domain   string
	Document *facts.Document
}

// Root returns base followed by the value of [SuffixEnv], so concurrent
// runs can keep their job directories apart.
func Root(base string) string {
	return base + os.Getenv(SuffixEnv)
}

// Dir returns the job directory owned by (client, partition, worker).
// It depends on nothing else, so a worker reuses the same directory for
// every row it processes in a partition.
func Dir(root string, client Client, partition, worker int) string {
	return filepath.Join(root, fmt.Sprintf("%s-%d-%d", client, partition, worker))
}

// Write persists j into j.Dir: the rendered fact document as [FactsFile]
// and the domain and client as [EnvFile]. Both files are synced before
// Write returns; the evaluator must not run unless it returned nil.
//
// Returns:
//   - error: nil, or an error wrapping [ErrPersistence] and the cause
func Write(j Job) error {
	if j.Document == nil {
		return fmt.Errorf("%w: %s: no document", ErrPersistence, j.Dir)
	}
	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if err := j.Document.Render(buf); err != nil {
		return fmt.Errorf("%w: render: %w", ErrPersistence, err)
	}
	if err := writeSynced(filepath.Join(j.Dir, FactsFile), buf.Bytes()); err != nil {
		return err
	}

	buf.Reset()
	writeEnv(buf, j)
	return writeSynced(filepath.Join(j.Dir, EnvFile), buf.Bytes())
}

func writeEnv(buf gc.Buffer, j Job) {
	buf.WriteString(":- module(env, [domain/1, client/1]).\n")
	buf.WriteString(facts.New("domain", facts.Str(j.Domain)).String())
	buf.WriteByte('\n')
	buf.WriteString(facts.New("client", facts.Atom(j.Client)).String())
	buf.WriteByte('\n')
}

func writeSynced(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrPersistence, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
