// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package evaluator

import (
	"context"
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
)

// ErrUnknown indicates the evaluator could not produce a verdict at all.
var ErrUnknown = errors.New("evaluator: unknown error")

// Evaluator decides whether a written job's chain satisfies the client's policy.
//
// Implementations must be safe for concurrent use; batch workers share one.
type Evaluator interface {
	Evaluate(ctx context.Context, j job.Job) (Verdict, error)
}

// Verify runs ev on j and folds the verdict into an error.
//
// Returns:
//   - error: nil on [Accept], *[PolicyViolation] for any other verdict, or an
//     error wrapping [ErrUnknown] when no verdict was produced
func Verify(ctx context.Context, ev Evaluator, j job.Job) error {
	v, err := ev.Evaluate(ctx, j)
	if err != nil {
		if errors.Is(err, ErrUnknown) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnknown, err)
	}
	if v == Accept {
		return nil
	}
	return &PolicyViolation{Verdict: v}
}
