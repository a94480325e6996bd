// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eaobservatory/hedwig2omp/internal/affiliation"
	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/exporter"
	"github.com/eaobservatory/hedwig2omp/internal/hedwig"
	"github.com/eaobservatory/hedwig2omp/internal/ompdb"
	"github.com/eaobservatory/hedwig2omp/internal/ompfile"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write OMP files for a semester from a Hedwig snapshot",
	Long: `Write the OMP project definition, affiliation, target, notes,
previous proposal publication and proposal files for a semester.

Nothing is written when any file cannot be produced, for example when an
assigned affiliation has no code in the [affiliation_code] section or a PI
has no linked OMP account. The project file needs the [omp] section.

Example:
  hedwig2omp export --input 20A.json --output-dir /jac_sw/omp/semester --kind project,affiliation`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExport(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	exportCmd.Flags().String("input", "", "Hedwig snapshot file (JSON)")
	exportCmd.Flags().String("output-dir", ".", "Directory to write files to")
	exportCmd.Flags().StringSlice("kind", nil, "Files to write (project, affiliation, target, notes, prev-prop-pub, proposals); default all")
	exportCmd.Flags().String("title-format", "legacy", "Project title encoding (legacy, unicode)")

	_ = exportCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command) error {
	input, _ := cmd.Flags().GetString("input")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	kindNames, _ := cmd.Flags().GetStringSlice("kind")
	titleFormat, _ := cmd.Flags().GetString("title-format")

	if input == "" {
		return fmt.Errorf("--input is required")
	}

	kinds, err := exporter.ParseKinds(kindNames)
	if err != nil {
		return err
	}

	format, err := ompfile.ParseTitleFormat(titleFormat)
	if err != nil {
		return err
	}

	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close("export")

	ctx := context.Background()

	opts := exporter.Options{
		Dir:         outputDir,
		Kinds:       kinds,
		TitleFormat: format,
	}

	if needsUsers(kinds) {
		users, err := r.linkedUsers(ctx)
		if err != nil {
			return err
		}
		opts.Users = users
	}

	resolver := affiliation.NewResolver(r.config.AffiliationCodes, r.logger, r.tracer)
	source := hedwig.NewFileSource(input, r.tracer, r.logger)

	report, err := exporter.NewExporter(source, resolver, r.tracer, r.monitor, r.logger).Export(ctx, opts)
	if err != nil {
		return err
	}

	for _, f := range report.Files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}

	return nil
}

func needsUsers(kinds []exporter.Kind) bool {
	for _, k := range kinds {
		if k == exporter.KindProject {
			return true
		}
	}

	return false
}

// linkedUsers maps Hedwig people to OMP user ids. The project file names
// OMP users, so it cannot be written without an [omp] section.
func (r *runtime) linkedUsers(ctx context.Context) (map[int64]string, error) {
	if r.config.OMP == nil {
		return nil, config.NewConfigurationError("omp", "", "section is required to write the project file")
	}

	dbClient, store, err := r.openStore()
	if err != nil {
		return nil, err
	}
	defer dbClient.Close()

	directory, err := ompdb.NewDirectory(r.config.OMP, r.tracer, r.monitor, r.logger)
	if err != nil {
		return nil, err
	}
	defer directory.Close()

	return exporter.LinkedUsers(ctx, store, directory)
}
