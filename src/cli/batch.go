// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/batch"
	x509chain "github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/job"
	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/translate"
)

func (a *app) batchCommand() *cobra.Command {
	var (
		start, end int
		checkOCSP  bool
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "batch <client> <certspath> <intpath> <outpath>",
		Short: "Evaluate partitions of a captured chain dataset",
		Long: `Evaluate partitions --start through --end (inclusive). Partition n is read from
<certspath>/certs-list_part<n*stride>.csv and written to
<outpath>/evaluation-result_part<n*stride>.csv. <client> is chrome or firefox.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := job.ParseClient(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			runID := uuid.NewString()
			log := a.logger(cmd, map[string]any{"run_id": runID, "client": client.String()})

			store, err := x509chain.LoadTrustStore(a.cfg.TrustStore)
			if err != nil {
				return fmt.Errorf("trust store: %w", err)
			}
			log.Printf("Loaded %d trust anchors from %s", store.Len(), store.Path())

			gen, closeCache, err := a.newRevocation(ctx, log)
			if err != nil {
				return err
			}
			defer closeCache()

			ev, err := a.newEvaluator(ctx)
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = a.cfg.Workers
			}
			o := &batch.Orchestrator{
				Translator:  translate.New(store, gen, log),
				Evaluator:   ev,
				JobRoot:     job.Root(a.cfg.Evaluator.JobRoot),
				Workers:     workers,
				Stride:      a.cfg.PartitionStride,
				Reconstruct: a.cfg.Intermediates.Reconstruct,
				Logger:      log,
				RunID:       runID,
			}

			report, err := o.Process(ctx, batch.Params{
				Client:    client,
				CertsPath: args[1],
				IntPath:   args[2],
				OutPath:   args[3],
				Start:     start,
				End:       end,
				CheckOCSP: checkOCSP,
			})
			if report != nil {
				log.Println(report.String())
				for _, n := range report.FailedPartitions() {
					log.Printf("partition %d: %v", n, report.Failed[n])
				}
			}
			if mem, ok := gen.Cache.(*revocation.MemoryCache); ok && checkOCSP {
				log.Println(mem.Stats())
			}
			if err != nil {
				return err
			}

			OperationPerformed = true
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "first partition (inclusive)")
	cmd.Flags().IntVar(&end, "end", 0, "last partition (inclusive)")
	cmd.Flags().BoolVar(&checkOCSP, "ocsp", false, "query OCSP responders for every certificate pair")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size (default: from config)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}
