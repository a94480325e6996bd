// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eaobservatory/hedwig2omp/internal/affiliation"
	"github.com/eaobservatory/hedwig2omp/internal/hedwig"
	"github.com/eaobservatory/hedwig2omp/internal/ompfile"
)

var affiliationsCmd = &cobra.Command{
	Use:   "affiliations",
	Short: "Inspect proposal affiliations",
}

var affiliationsCodesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Show the OMP code matched to each Hedwig affiliation",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAffiliationsCodes(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Affiliation codes failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var affiliationsCrossMatchCmd = &cobra.Command{
	Use:   "crossmatch",
	Short: "Write a CSV table of CoI affiliations by PI affiliation",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAffiliationsCrossMatch(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Affiliation cross-match failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{affiliationsCodesCmd, affiliationsCrossMatchCmd} {
		c.Flags().String("input", "", "Hedwig snapshot file (JSON)")
		_ = c.MarkFlagRequired("input")
		affiliationsCmd.AddCommand(c)
	}

	rootCmd.AddCommand(affiliationsCmd)
}

func runAffiliationsCodes(cmd *cobra.Command) error {
	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		return fmt.Errorf("--input is required")
	}

	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close("affiliations_codes")

	snapshot, err := hedwig.NewFileSource(input, r.tracer, r.logger).Load(context.Background())
	if err != nil {
		return err
	}

	codeTable := affiliation.NewResolver(r.config.AffiliationCodes, r.logger, r.tracer).BuildCodeTable(snapshot.Affiliations)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Affiliation", "Code"})
	for _, a := range snapshot.Affiliations {
		code, ok := codeTable[a.ID]
		if !ok {
			code = "-"
		}
		table.Append([]string{strconv.FormatInt(a.ID, 10), a.Name, code})
	}
	table.Render()

	return nil
}

func runAffiliationsCrossMatch(cmd *cobra.Command) error {
	input, _ := cmd.Flags().GetString("input")
	if input == "" {
		return fmt.Errorf("--input is required")
	}

	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close("affiliations_crossmatch")

	snapshot, err := hedwig.NewFileSource(input, r.tracer, r.logger).Load(context.Background())
	if err != nil {
		return err
	}

	return ompfile.WriteCrossMatch(cmd.OutOrStdout(), affiliation.NewCrossMatch(snapshot.Proposals, r.logger))
}
