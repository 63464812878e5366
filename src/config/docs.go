// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the verifier configuration from JSON or YAML.
//
// Example (config.yaml):
//
//	trustStore: assets/roots.pem
//	evaluator:
//	  kind: process
//	  script: prolog/run.sh
//	  jobRoot: prolog/job
//	workers: 8
//	partitionStride: 100
//	ocsp:
//	  timeoutSeconds: 5
//	  redisAddr: localhost:6379
//	intermediates:
//	  reconstruct: true
//	log:
//	  format: json
//
// Files are validated against an embedded JSON schema before use, so unknown
// keys and wrong types are reported instead of silently ignored.
package config
