// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the TLS certificate policy verifier.
// It implements a Cobra-based CLI with three commands: batch evaluates partitioned
// datasets, verify evaluates a single chain from a file or a live handshake, and
// summarize counts the outcomes of a finished run. Configuration is loaded once
// per invocation and the caller's context carries signal cancellation into the
// batch workers.
package cli
