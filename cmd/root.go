// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/db"
	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring/prometheus"
	"github.com/eaobservatory/hedwig2omp/internal/storage"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
)

const serviceName = "hedwig2omp"

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Convert Hedwig proposal records into OMP files",
	Long: `hedwig2omp writes the files OMP needs to set up a semester from the
proposals reviewed in Hedwig, and keeps the table linking Hedwig people to
OMP accounts.

The configuration file is read from etc/hedwig2omp.ini below the directory
given by --config-dir, $HEDWIG2OMP_DIR or the working directory.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", "", "Directory containing etc/hedwig2omp.ini")
}

// runtime holds what every command sets up before doing its work.
type runtime struct {
	specs   *config.EnvSpec
	config  *config.Config
	logger  *logging.Logger
	tracer  *tracing.Tracer
	monitor *prometheus.Monitor
}

func setup(cmd *cobra.Command) (*runtime, error) {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return nil, fmt.Errorf("issues with environment sourcing: %w", err)
	}

	level := specs.LogLevel
	if specs.Debug {
		level = "debug"
	}
	logger := logging.NewLogger(level)

	dir, _ := cmd.Flags().GetString("config-dir")
	if dir == "" {
		dir = specs.ConfigDir
	}

	cfg, err := config.Load(dir)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	logger.Debugf("configuration read from %s", cfg.Path())

	r := &runtime{
		specs:   specs,
		config:  cfg,
		logger:  logger,
		monitor: prometheus.NewMonitor(serviceName, logger),
		tracer:  tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger)),
	}

	logger.Security().SystemStartup()

	return r, nil
}

// close pushes the batch metrics and flushes traces and logs.
func (r *runtime) close(job string) {
	ctx := context.Background()

	if err := r.monitor.Push(ctx, r.specs.PushgatewayURL, job); err != nil {
		r.logger.Warnf("failed to push metrics: %v", err)
	}
	if err := r.tracer.Shutdown(ctx); err != nil {
		r.logger.Warnf("failed to flush traces: %v", err)
	}

	r.logger.Security().SystemShutdown()
	_ = r.logger.Sync()
}

func (r *runtime) dbConfig() db.Config {
	c := db.ConfigFromDatabase(r.config.Database)
	c.MaxOpenConns = r.specs.DBMaxOpenConns
	c.TracingEnabled = r.specs.TracingEnabled

	return c
}

// openStore connects to the identity store.
func (r *runtime) openStore() (*db.DBClient, *storage.Storage, error) {
	dbClient, err := db.NewDBClient(r.dbConfig(), r.tracer, r.monitor, r.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return dbClient, storage.NewStorage(dbClient, r.tracer, r.monitor, r.logger), nil
}
