// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/hedwig"
	"github.com/eaobservatory/hedwig2omp/internal/importer"
	"github.com/eaobservatory/hedwig2omp/internal/ompdb"
	"github.com/eaobservatory/hedwig2omp/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Link Hedwig people to OMP accounts",
	Long: `Link the people on the proposals of a Hedwig snapshot to OMP accounts
with the same email address, recording new links in the user table.

With --dry-run the links are computed but not stored.

Example:
  hedwig2omp import --input 20A.json`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runImport(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	importCmd.Flags().String("input", "", "Hedwig snapshot file (JSON)")
	importCmd.Flags().Bool("dry-run", false, "Report new links without storing them")

	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command) error {
	input, _ := cmd.Flags().GetString("input")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if input == "" {
		return fmt.Errorf("--input is required")
	}

	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close("import")

	if r.config.OMP == nil {
		return config.NewConfigurationError("omp", "", "section is required for import")
	}

	ctx := context.Background()

	snapshot, err := hedwig.NewFileSource(input, r.tracer, r.logger).Load(ctx)
	if err != nil {
		return err
	}

	dbClient, s, err := r.openStore()
	if err != nil {
		return err
	}
	defer dbClient.Close()

	var store importer.StorageInterface = s
	if dryRun {
		existing, err := s.GetAllUsers(ctx)
		if err != nil {
			return err
		}
		store = storage.NewMemoryStore(existing)
	}

	directory, err := ompdb.NewDirectory(r.config.OMP, r.tracer, r.monitor, r.logger)
	if err != nil {
		return err
	}
	defer directory.Close()

	result, err := importer.NewImporter(directory, store, r.tracer, r.monitor, r.logger).Run(ctx, snapshot.People())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "linked %d, already linked %d, without email %d, unmatched %d\n",
		result.Linked, result.AlreadyLinked, result.NoEmail, result.Unmatched)

	return nil
}
