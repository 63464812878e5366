// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
)

// ProcessEvaluator runs an external script as
//
//	<Script> <jobDir> <client>
//
// and classifies its exit status. A non-zero status is a verdict, not a failure.
type ProcessEvaluator struct {
	Script string
	// Stdout and Stderr receive the script's output; nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// NewProcessEvaluator checks that script can be executed.
func NewProcessEvaluator(script string) (*ProcessEvaluator, error) {
	if err := posix.CheckExecutable(script); err != nil {
		return nil, fmt.Errorf("%w: evaluator script: %w", ErrUnknown, err)
	}
	return &ProcessEvaluator{Script: script}, nil
}

// Evaluate implements [Evaluator]. The call blocks until the script exits;
// cancelling ctx does not interrupt a running script.
func (p *ProcessEvaluator) Evaluate(ctx context.Context, j job.Job) (Verdict, error) {
	cmd := exec.CommandContext(context.WithoutCancel(ctx), p.Script, j.Dir, j.Client.String())
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	err := cmd.Run()
	if err == nil {
		return Accept, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Killed by a signal reports -1 and lands in Unclassified.
		return Classify(exitErr.ExitCode()), nil
	}
	return Unclassified, fmt.Errorf("%w: %s: %w", ErrUnknown, p.Script, err)
}
