// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	registry *prometheus.Registry

	responseTime *prometheus.HistogramVec
	dependencies *prometheus.GaugeVec
	records      *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not initialized")
	}

	m.responseTime.With(tags).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencies == nil {
		return fmt.Errorf("metric not initialized")
	}

	m.dependencies.With(tags).Set(value)

	return nil
}

func (m *Monitor) IncRecordsCounter(tags map[string]string, value float64) error {
	if m.records == nil {
		return fmt.Errorf("metric not initialized")
	}

	m.records.With(tags).Add(value)

	return nil
}

// Registry exposes the registry the monitor writes to.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the collected metrics to a push gateway under the given job
// name. A one-shot run never lives long enough to be scraped.
func (m *Monitor) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}

	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		m.logger.Errorf("failed to push metrics to %s: %v", url, err)
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	return nil
}

func (m *Monitor) registerHistograms() {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "storage_response_time_seconds",
			Help: "storage operation response time",
		},
		[]string{"operation", "driver"},
	)

	m.registry.MustRegister(m.responseTime)
}

func (m *Monitor) registerGauges() {
	m.dependencies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "dependency availability",
		},
		[]string{"component"},
	)

	m.registry.MustRegister(m.dependencies)
}

func (m *Monitor) registerCounters() {
	m.records = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_total",
			Help: "records written or linked during a run",
		},
		[]string{"kind"},
	)

	m.registry.MustRegister(m.records)
}

func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger
	m.registry = prometheus.NewRegistry()

	m.registerHistograms()
	m.registerGauges()
	m.registerCounters()

	return m
}
