// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eaobservatory/hedwig2omp/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the user table",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command) error {
	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close("migrate")

	dbClient, _, err := r.openStore()
	if err != nil {
		return err
	}
	defer dbClient.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, dbClient); err != nil {
		return err
	}

	version, err := db.MigrationVersion(ctx, dbClient)
	if err != nil {
		return err
	}

	r.logger.Security().AdminAction(actor(), "migrate", fmt.Sprintf("schema/%d", version))
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)

	return nil
}
