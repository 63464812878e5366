// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/evaluator"
	x509certs "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/translate"
)

// ErrChainSource is returned unless exactly one of --file and --remote is given.
var ErrChainSource = errors.New("cli: exactly one of --file or --remote is required")

func (a *app) verifyCommand() *cobra.Command {
	var (
		file, remote, jobDir string
		output               string
		checkOCSP, staple    bool
		tree                 bool
	)

	cmd := &cobra.Command{
		Use:   "verify <client> <domain>",
		Short: "Evaluate one chain from a PEM file or a live TLS handshake",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (remote == "") {
				return ErrChainSource
			}
			client, err := job.ParseClient(args[0])
			if err != nil {
				return err
			}
			domain := strings.ToLower(args[1])
			ctx := cmd.Context()
			log := a.logger(cmd, map[string]any{"client": client.String(), "domain": domain})

			var (
				chain   *x509chain.Chain
				stapled []byte
			)
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if chain, err = x509chain.Parse(data); err != nil {
					return fmt.Errorf("%w: %w", translate.ErrParsing, err)
				}
			} else {
				host, port, err := splitHostPort(remote)
				if err != nil {
					return err
				}
				r, err := x509chain.FetchRemoteChain(ctx, host, port, a.cfg.OCSPTimeout())
				if err != nil {
					return err
				}
				chain, stapled = r.Chain, r.Staple
			}

			store, err := x509chain.LoadTrustStore(a.cfg.TrustStore)
			if err != nil {
				return fmt.Errorf("trust store: %w", err)
			}
			gen, closeCache, err := a.newRevocation(ctx, log)
			if err != nil {
				return err
			}
			defer closeCache()

			ev, err := a.newEvaluator(ctx)
			if err != nil {
				return err
			}

			res, err := translate.New(store, gen, log).Translate(ctx, chain.Certs, stapled, checkOCSP, staple)
			if err != nil {
				return err
			}
			// Stack holds the supplied certificates followed by discovered anchors.
			chain.Extend(res.Stack[len(chain.Supplied()):]...)

			out := cmd.OutOrStdout()
			if tree {
				fmt.Fprint(out, chain.RenderASCIITree())
			} else {
				fmt.Fprint(out, chain.RenderTable())
			}
			if output != "" {
				if err := os.WriteFile(output, x509certs.New().EncodePEM(chain.Certs...), 0o644); err != nil {
					return err
				}
			}

			if jobDir == "" {
				jobDir = filepath.Join(job.Root(a.cfg.Evaluator.JobRoot), "verify-"+client.String())
			}
			j := job.Job{Dir: jobDir, Client: client, Domain: domain, Document: res.Document}
			if err := job.Write(j); err != nil {
				return err
			}

			outcome := "OK"
			var violation *evaluator.PolicyViolation
			switch err := evaluator.Verify(ctx, ev, j); {
			case errors.As(err, &violation):
				outcome = violation.Error()
			case err != nil:
				return err
			}

			fmt.Fprintf(out, "%s %s: %s (%d certificates, job %s)\n", client, domain, outcome, chain.Len(), jobDir)
			OperationPerformed = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "PEM or DER chain, leaf first")
	cmd.Flags().StringVarP(&remote, "remote", "r", "", "fetch the chain from host[:port] (default port 443)")
	cmd.Flags().StringVar(&jobDir, "job-dir", "", "job directory (default: <jobRoot>/verify-<client>)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the resolved chain, trust anchors included, as a PEM bundle")
	cmd.Flags().BoolVar(&checkOCSP, "ocsp", false, "query OCSP responders")
	cmd.Flags().BoolVar(&staple, "staple", false, "evaluate the stapled OCSP response of a remote chain")
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "print the chain as an ASCII tree instead of a table")
	return cmd
}

// splitHostPort accepts host or host:port.
func splitHostPort(s string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return s, 443, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in %q", s)
	}
	return host, port, nil
}
