// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package batch

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Report summarizes one [Orchestrator.Process] call.
type Report struct {
	RunID      string
	Partitions int
	Rows       int
	Accepted   int
	Skipped    int
	Rejected   int // policy violations and row errors
	Malformed  int // unreadable records, absent from the output files
	Elapsed    time.Duration
	// Failed maps partition numbers to the error that stopped them.
	Failed map[int]error

	mu sync.Mutex
}

func newReport(runID string, partitions int) *Report {
	return &Report{RunID: runID, Partitions: partitions, Failed: make(map[int]error)}
}

func (r *Report) count(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rows++
	switch outcome {
	case OutcomeOK:
		r.Accepted++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Rejected++
	}
}

func (r *Report) malformed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Malformed++
}

func (r *Report) fail(partition int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed[partition] = err
}

// FailedPartitions returns the failed partition numbers in ascending order.
func (r *Report) FailedPartitions() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.Failed))
	for n := range r.Failed {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (r *Report) String() string {
	return fmt.Sprintf("run %s: %d partitions, %d rows (%d accepted, %d rejected, %d skipped), %d malformed records, %d failed partitions in %s",
		r.RunID, r.Partitions, r.Rows, r.Accepted, r.Rejected, r.Skipped, r.Malformed, len(r.FailedPartitions()), r.Elapsed.Round(time.Millisecond))
}
