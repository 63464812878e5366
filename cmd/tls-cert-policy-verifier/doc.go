// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// tls-cert-policy-verifier evaluates captured TLS certificate chains against
// the trust policy of a browser (chrome or firefox).
//
// Every chain is translated into a Prolog fact module, written to a job
// directory next to an env module naming the domain and client, and handed
// to a policy evaluator whose exit status is the verdict.
//
// # Installation
//
//	go install github.com/H0llyW00dzZ/tls-cert-policy-verifier/cmd/tls-cert-policy-verifier@latest
//
// # Usage
//
//	tls-cert-policy-verifier [--config FILE] batch <client> <certspath> <intpath> <outpath> --start N --end M [--ocsp]
//	tls-cert-policy-verifier [--config FILE] verify <client> <domain> (--file CHAIN | --remote HOST[:PORT]) [--ocsp] [--staple] [--tree]
//	tls-cert-policy-verifier summarize <outpath>
//
// # Examples
//
// Evaluate partitions 0 to 9 with the chrome policy:
//
//	tls-cert-policy-verifier batch chrome data/certs data/ints results --start 0 --end 9
//
// Check a live site including its stapled OCSP response:
//
//	tls-cert-policy-verifier verify firefox example.com --remote example.com --staple
//
// Count outcomes of a finished run:
//
//	tls-cert-policy-verifier summarize results
//
// # Environment
//
//	X509_POLICY_CONFIG_FILE   config file used when --config is absent
//	X509_POLICY_JOB_SUFFIX    appended to the job root to separate concurrent runs
//	X509_POLICY_WORKERS       overrides the worker pool size
//	X509_POLICY_REDIS_ADDR    caches OCSP responses in Redis
//	X509_POLICY_LOG_FORMAT    text or json
package main
