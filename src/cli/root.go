// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/config"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/evaluator"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/logger"
)

// OperationPerformed reports whether the last Execute ran a command to completion
// (as opposed to printing help or version information).
var OperationPerformed bool

// app carries state shared by the subcommands of one invocation.
type app struct {
	version    string
	log        logger.Logger
	configPath string
	cfg        *config.Config
}

// NewRootCommand builds the command tree.
//
// Parameters:
//   - version: Reported by --version and sent in OCSP User-Agent headers
//   - log: Progress logger used when the config selects text logs
//
// Returns:
//   - *cobra.Command: Root command with batch, verify and summarize attached
func NewRootCommand(version string, log logger.Logger) *cobra.Command {
	a := &app{version: version, log: log}

	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName(),
		Short:         "Evaluate TLS certificate chains against browser trust policies",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		fmt.Sprintf("config file (.json, .yaml, .yml; default: $%s)", config.EnvConfigFile))

	rootCmd.AddCommand(a.batchCommand(), a.verifyCommand(), a.summarizeCommand())
	return rootCmd
}

// Execute runs the root command with os.Args.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false
	rootCmd := NewRootCommand(version, log)
	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.ExecuteContext(ctx)
}

// logger returns the configured logger, tagging JSON entries with fields.
func (a *app) logger(cmd *cobra.Command, fields map[string]any) logger.Logger {
	if a.cfg != nil && a.cfg.Log.Format == "json" {
		return logger.NewJSONLogger(cmd.OutOrStdout(), fields)
	}
	if a.log != nil {
		return a.log
	}
	l := logger.NewCLILogger()
	l.SetOutput(cmd.OutOrStdout())
	return l
}

// newEvaluator builds the evaluator selected by the config.
func (a *app) newEvaluator(ctx context.Context) (evaluator.Evaluator, error) {
	switch a.cfg.Evaluator.Kind {
	case config.EvaluatorRego:
		var paths []string
		if a.cfg.Evaluator.RegoPath != "" {
			paths = append(paths, a.cfg.Evaluator.RegoPath)
		}
		return evaluator.NewRegoEvaluator(ctx, a.cfg.Evaluator.RegoQuery, paths...)
	default:
		pe, err := evaluator.NewProcessEvaluator(a.cfg.Evaluator.Script)
		if err != nil {
			return nil, err
		}
		pe.Stderr = os.Stderr
		return pe, nil
	}
}

// newRevocation builds the OCSP fact generator and its cache.
// The returned func releases the cache connection.
func (a *app) newRevocation(ctx context.Context, log logger.Logger) (*revocation.OCSPGenerator, func(), error) {
	gen := revocation.NewOCSPGenerator(a.version, log)
	gen.HTTP.Timeout = a.cfg.OCSPTimeout()

	if addr := a.cfg.OCSP.RedisAddr; addr != "" {
		cache, err := revocation.DialRedis(ctx, addr)
		if err != nil {
			return nil, nil, err
		}
		gen.Cache = cache
		return gen, func() { cache.Close() }, nil
	}

	gen.Cache = revocation.NewMemoryCache(revocation.MemoryCacheConfig{MaxSize: a.cfg.OCSP.CacheSize})
	return gen, func() {}, nil
}
