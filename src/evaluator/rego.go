// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package evaluator

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/open-policy-agent/opa/rego"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
)

// DefaultQuery selects the numeric status produced by a policy.
const DefaultQuery = "data.x509policy.status"

//go:embed policy/default.rego
var defaultPolicy string

// RegoEvaluator evaluates jobs in process with Open Policy Agent.
//
// The policy sees the fact document as input.certs (see [facts.Document.Input])
// next to input.domain, input.client and input.now, and must yield one of
// the evaluator exit statuses.
//
// [facts.Document.Input]: https://pkg.go.dev/github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/facts#Document.Input
type RegoEvaluator struct {
	query rego.PreparedEvalQuery
	Now   func() time.Time
}

// NewRegoEvaluator loads the policy files or directories at paths.
// With no paths the bundled baseline policy is used.
func NewRegoEvaluator(ctx context.Context, query string, paths ...string) (*RegoEvaluator, error) {
	if len(paths) == 0 {
		return NewRegoEvaluatorFromModule(ctx, query, "default.rego", defaultPolicy)
	}
	return prepare(ctx, query, rego.Load(paths, nil))
}

// NewRegoEvaluatorFromModule compiles a single policy module.
func NewRegoEvaluatorFromModule(ctx context.Context, query, filename, module string) (*RegoEvaluator, error) {
	return prepare(ctx, query, rego.Module(filename, module))
}

func prepare(ctx context.Context, query string, source func(*rego.Rego)) (*RegoEvaluator, error) {
	if query == "" {
		query = DefaultQuery
	}
	r := rego.New(
		rego.Query(query),
		rego.StrictBuiltinErrors(true),
		source,
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: policy: %w", ErrUnknown, err)
	}
	return &RegoEvaluator{query: prepared, Now: time.Now}, nil
}

// Evaluate implements [Evaluator].
func (e *RegoEvaluator) Evaluate(ctx context.Context, j job.Job) (Verdict, error) {
	if j.Document == nil {
		return Unclassified, fmt.Errorf("%w: job %s has no document", ErrUnknown, j.Dir)
	}

	input := map[string]any{
		"certs":  j.Document.Input(),
		"domain": j.Domain,
		"client": j.Client.String(),
		"now":    e.now().Unix(),
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Unclassified, fmt.Errorf("%w: %w", ErrUnknown, err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return Unclassified, fmt.Errorf("%w: empty policy result", ErrUnknown)
	}

	status, err := toStatus(results[0].Expressions[0].Value)
	if err != nil {
		return Unclassified, err
	}
	return Classify(status), nil
}

func (e *RegoEvaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

var errStatusType = errors.New("evaluator: policy status is not an integer")

func toStatus(value any) (int, error) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %w: %s", ErrUnknown, errStatusType, v)
		}
		return int(n), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %w: %v", ErrUnknown, errStatusType, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: %w: %T", ErrUnknown, errStatusType, value)
	}
}
