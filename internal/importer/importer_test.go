// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	trace "go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/db"
	"github.com/eaobservatory/hedwig2omp/internal/storage"
	"github.com/eaobservatory/hedwig2omp/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package importer -destination ./mock_importer.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package importer -destination ./mock_storage.go -source=./importer.go
//go:generate mockgen -build_flags=--mod=mod -package importer -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package importer -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package importer -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go

var testPeople = []types.Member{
	{PersonID: 1, Name: "Already Linked", Email: "linked@example.org"},
	{PersonID: 2, Name: "New Person", Email: " New@Example.org "},
	{PersonID: 3, Name: "No Email"},
	{PersonID: 4, Name: "Not In OMP", Email: "nobody@example.org"},
}

var testOMPUsers = map[string]types.OMPUser{
	"linked@example.org": {ID: 100, UserID: "LINKED"},
	"new@example.org":    {ID: 200, UserID: "NEWP"},
}

type mocks struct {
	directory *MockDirectoryInterface
	storage   *MockStorageInterface
	logger    *MockLoggerInterface
	security  *MockSecurityLoggerInterface
	tracer    *MockTracingInterface
	monitor   *MockMonitorInterface
}

func newMocks(ctrl *gomock.Controller) *mocks {
	m := &mocks{
		directory: NewMockDirectoryInterface(ctrl),
		storage:   NewMockStorageInterface(ctrl),
		logger:    NewMockLoggerInterface(ctrl),
		security:  NewMockSecurityLoggerInterface(ctrl),
		tracer:    NewMockTracingInterface(ctrl),
		monitor:   NewMockMonitorInterface(ctrl),
	}

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any()).Return(context.Background(), trace.SpanFromContext(context.Background())).AnyTimes()
	m.logger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Security().Return(m.security).AnyTimes()
	m.monitor.EXPECT().IncRecordsCounter(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return m
}

func TestImporterRun(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*mocks)
		want       *Result
		expectErr  error
	}{
		{
			name: "successful import",
			setupMocks: func(m *mocks) {
				m.storage.EXPECT().GetAllUsers(gomock.Any()).Return(map[int64]int64{1: 100}, nil)
				m.directory.EXPECT().GetUsersByEmail(gomock.Any()).Return(testOMPUsers, nil)
				m.storage.EXPECT().AddUser(gomock.Any(), int64(2), int64(200)).Return(nil)
				m.security.EXPECT().IdentityLinked(int64(2), int64(200))
			},
			want: &Result{Linked: 1, AlreadyLinked: 1, NoEmail: 1, Unmatched: 1},
		},
		{
			name: "empty store",
			setupMocks: func(m *mocks) {
				m.storage.EXPECT().GetAllUsers(gomock.Any()).Return(map[int64]int64{}, nil)
				m.directory.EXPECT().GetUsersByEmail(gomock.Any()).Return(testOMPUsers, nil)
				m.storage.EXPECT().AddUser(gomock.Any(), int64(1), int64(100)).Return(nil)
				m.storage.EXPECT().AddUser(gomock.Any(), int64(2), int64(200)).Return(nil)
				m.security.EXPECT().IdentityLinked(gomock.Any(), gomock.Any()).Times(2)
			},
			want: &Result{Linked: 2, NoEmail: 1, Unmatched: 1},
		},
		{
			name: "storage read error propagates",
			setupMocks: func(m *mocks) {
				m.storage.EXPECT().GetAllUsers(gomock.Any()).Return(nil, storage.ErrConnectivity)
			},
			expectErr: storage.ErrConnectivity,
		},
		{
			name: "directory error propagates",
			setupMocks: func(m *mocks) {
				m.storage.EXPECT().GetAllUsers(gomock.Any()).Return(map[int64]int64{}, nil)
				m.directory.EXPECT().GetUsersByEmail(gomock.Any()).Return(nil, errors.New("omp unavailable"))
			},
			expectErr: errors.New("omp unavailable"),
		},
		{
			name: "duplicate key is non-fatal",
			setupMocks: func(m *mocks) {
				m.storage.EXPECT().GetAllUsers(gomock.Any()).Return(map[int64]int64{1: 100}, nil)
				m.directory.EXPECT().GetUsersByEmail(gomock.Any()).Return(testOMPUsers, nil)
				m.storage.EXPECT().AddUser(gomock.Any(), int64(2), int64(200)).
					Return(fmt.Errorf("failed to insert user 2: %w", storage.ErrDuplicateKey))
				m.logger.EXPECT().Warnf(gomock.Any(), gomock.Any()).Times(1)
			},
			want: &Result{AlreadyLinked: 2, NoEmail: 1, Unmatched: 1},
		},
		{
			name: "connectivity error on insert stops the run",
			setupMocks: func(m *mocks) {
				m.storage.EXPECT().GetAllUsers(gomock.Any()).Return(map[int64]int64{}, nil)
				m.directory.EXPECT().GetUsersByEmail(gomock.Any()).Return(testOMPUsers, nil)
				m.storage.EXPECT().AddUser(gomock.Any(), int64(1), int64(100)).
					Return(fmt.Errorf("failed to insert user 1: %w", storage.ErrConnectivity))
			},
			expectErr: storage.ErrConnectivity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			tt.setupMocks(m)

			imp := NewImporter(m.directory, m.storage, m.tracer, m.monitor, m.logger)
			got, err := imp.Run(context.Background(), testPeople)

			if tt.expectErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.expectErr) && !strings.Contains(err.Error(), tt.expectErr.Error()) {
					t.Fatalf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *got != *tt.want {
				t.Fatalf("Run() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

// sanitizeName converts test names to valid container names.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ToLower(name)
	return name
}

func setupTestPostgres(t *testing.T) (string, *postgres.PostgresContainer) {
	t.Helper()
	ctx := context.Background()

	containerName := fmt.Sprintf("hedwig2omp-importer-%s", sanitizeName(t.Name()))

	var pgContainer *postgres.PostgresContainer
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("Skipping: Docker not available (%v)", r)
			}
		}()
		var err error
		pgContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("testdb"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			postgres.BasicWaitStrategies(),
			testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
				ContainerRequest: testcontainers.ContainerRequest{
					Name: containerName,
				},
			}),
		)
		if err != nil {
			t.Skipf("Skipping: failed to start PostgreSQL container (%v)", err)
		}
	}()

	if pgContainer == nil {
		return "", nil
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	return connStr, pgContainer
}

func runImportTwice(t *testing.T, cfg db.Config) {
	t.Helper()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)

	// Allow any logging calls
	m.logger.EXPECT().Errorf(gomock.Any(), gomock.Any()).Do(func(f string, v ...interface{}) { t.Logf("ERROR: "+f, v...) }).AnyTimes()
	m.logger.EXPECT().Warnf(gomock.Any(), gomock.Any()).Do(func(f string, v ...interface{}) { t.Logf("WARN: "+f, v...) }).AnyTimes()
	m.monitor.EXPECT().SetDependencyAvailability(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.monitor.EXPECT().SetResponseTimeMetric(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.security.EXPECT().IdentityLinked(gomock.Any(), gomock.Any()).Times(2)
	m.directory.EXPECT().GetUsersByEmail(gomock.Any()).Return(testOMPUsers, nil).Times(2)

	dbClient, err := db.NewDBClient(cfg, m.tracer, m.monitor, m.logger)
	if err != nil {
		t.Fatalf("Failed to create DB client: %v", err)
	}
	defer dbClient.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, dbClient); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	s := storage.NewStorage(dbClient, m.tracer, m.monitor, m.logger)
	imp := NewImporter(m.directory, s, m.tracer, m.monitor, m.logger)

	result, err := imp.Run(ctx, testPeople)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Linked != 2 {
		t.Fatalf("Expected 2 links, got %+v", result)
	}

	users, err := s.GetAllUsers(ctx)
	if err != nil {
		t.Fatalf("Failed to list users: %v", err)
	}
	if len(users) != 2 || users[1] != 100 || users[2] != 200 {
		t.Fatalf("Unexpected users %v", users)
	}

	// A second run finds everything linked already.
	result, err = imp.Run(ctx, testPeople)
	if err != nil {
		t.Fatalf("Second import failed: %v", err)
	}
	if result.Linked != 0 || result.AlreadyLinked != 2 {
		t.Fatalf("Expected no new links, got %+v", result)
	}
}

func TestImporterSQLite(t *testing.T) {
	runImportTwice(t, db.Config{
		Driver: config.DriverSQLite,
		File:   filepath.Join(t.TempDir(), "users.db"),
	})
}

func TestImporterIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Parallel()

	connStr, container := setupTestPostgres(t)
	if container == nil {
		return // skipped due to Docker unavailability
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	runImportTwice(t, db.Config{Driver: config.DriverPostgres, DSN: connStr, MaxOpenConns: 4})
}
