// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-policy-verifier/src/batch"
)

func (a *app) summarizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <outpath>",
		Short: "Count outcomes across evaluation-result_part*.csv files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := batch.Summarize(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, s.RenderTable())
			fmt.Fprintf(out, "%d rows in %d files\n", s.Rows, s.Files)
			OperationPerformed = true
			return nil
		},
	}
}
