// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/eaobservatory/hedwig2omp/internal/config"
	"github.com/eaobservatory/hedwig2omp/internal/db"
	"github.com/eaobservatory/hedwig2omp/internal/logging"
	"github.com/eaobservatory/hedwig2omp/internal/monitoring"
	"github.com/eaobservatory/hedwig2omp/internal/tracing"
)

type recordingMonitor struct {
	monitoring.NoopMonitor
	operations []string
}

func (m *recordingMonitor) SetResponseTimeMetric(labels map[string]string, _ float64) error {
	m.operations = append(m.operations, labels["operation"]+"/"+labels["driver"])
	return nil
}

func openStore(t *testing.T, cfg db.Config) (*Storage, *recordingMonitor) {
	t.Helper()

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := new(recordingMonitor)

	c, err := db.NewDBClient(cfg, tracer, monitor, logger)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := db.Migrate(context.Background(), c); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewStorage(c, tracer, monitor, logger), monitor
}

func openSQLiteStore(t *testing.T) (*Storage, *recordingMonitor) {
	t.Helper()

	return openStore(t, db.Config{
		Driver: config.DriverSQLite,
		File:   filepath.Join(t.TempDir(), "users.db"),
	})
}

func TestGetAllUsersEmpty(t *testing.T) {
	s, _ := openSQLiteStore(t)

	users, err := s.GetAllUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil map, got %#v", users)
	}
}

func TestAddUser(t *testing.T) {
	tests := []struct {
		name     string
		existing map[int64]int64
		hedwigID int64
		ompID    int64
		want     map[int64]int64
		wantErr  error
	}{
		{
			name:     "new mapping",
			hedwigID: 5,
			ompID:    105,
			want:     map[int64]int64{5: 105},
		},
		{
			name:     "second mapping",
			existing: map[int64]int64{5: 105},
			hedwigID: 6,
			ompID:    106,
			want:     map[int64]int64{5: 105, 6: 106},
		},
		{
			name:     "duplicate is rejected and original kept",
			existing: map[int64]int64{5: 105},
			hedwigID: 5,
			ompID:    999,
			want:     map[int64]int64{5: 105},
			wantErr:  ErrDuplicateKey,
		},
		{
			name:     "zero omp id is stored",
			hedwigID: 7,
			ompID:    0,
			want:     map[int64]int64{7: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, _ := openSQLiteStore(t)

			for h, o := range tt.existing {
				if err := s.AddUser(ctx, h, o); err != nil {
					t.Fatalf("failed to seed user %d: %v", h, err)
				}
			}

			err := s.AddUser(ctx, tt.hedwigID, tt.ompID)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			got, err := s.GetAllUsers(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for h, o := range tt.want {
				if got[h] != o {
					t.Fatalf("expected %d -> %d, got %v", h, o, got)
				}
			}
		})
	}
}

func TestStorageRecordsResponseTime(t *testing.T) {
	ctx := context.Background()
	s, monitor := openSQLiteStore(t)

	if err := s.AddUser(ctx, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.GetAllUsers(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"AddUser/sqlite", "GetAllUsers/sqlite"}
	if strings.Join(monitor.operations, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, monitor.operations)
	}
}

func TestAddUserAfterClose(t *testing.T) {
	ctx := context.Background()
	s, _ := openSQLiteStore(t)

	s.db.Close()

	err := s.AddUser(ctx, 1, 2)
	if err == nil {
		t.Fatal("expected error after close")
	}
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestGetAllUsersScanFailure(t *testing.T) {
	ctx := context.Background()
	s, _ := openSQLiteStore(t)

	_, err := s.db.Statement(ctx).
		Insert(s.table()).
		Columns("hedwig_id", "omp_id").
		Values(1, "not a number").
		ExecContext(ctx)
	if err != nil {
		t.Fatalf("failed to insert row: %v", err)
	}

	_, err = s.GetAllUsers(ctx)
	if err == nil || !strings.Contains(err.Error(), "failed to scan user") {
		t.Fatalf("expected scan error, got %v", err)
	}
	if errors.Is(err, ErrConnectivity) || errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("unexpected classification of %v", err)
	}
}

func TestWrapError(t *testing.T) {
	s, _ := openSQLiteStore(t)
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "bad connection", err: driver.ErrBadConn, want: ErrConnectivity},
		{name: "unique violation", err: errors.New("constraint failed: UNIQUE constraint failed: user.hedwig_id"), want: ErrDuplicateKey},
		{name: "other", err: cause, want: cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.wrapError(tt.err, "failed to scan user")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !strings.HasPrefix(err.Error(), "failed to scan user") {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	seed := map[int64]int64{1: 10}
	m := NewMemoryStore(seed)

	if err := m.AddUser(ctx, 2, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.AddUser(ctx, 1, 99); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	got, _ := m.GetAllUsers(ctx)
	if len(got) != 2 || got[1] != 10 || got[2] != 20 {
		t.Fatalf("unexpected users %v", got)
	}

	got[3] = 30
	if _, ok := seed[2]; ok {
		t.Fatal("seed map was modified")
	}
	again, _ := m.GetAllUsers(ctx)
	if _, ok := again[3]; ok {
		t.Fatal("returned map aliases store state")
	}
}

// sanitizeName converts test names to valid container names.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, " ", "-")
	return strings.ToLower(name)
}

func setupTestPostgres(t *testing.T) (string, *postgres.PostgresContainer) {
	t.Helper()
	ctx := context.Background()

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
			postgres.WithDatabase("hedwig2omp"),
			postgres.WithUsername("testuser"),
			postgres.WithPassword("testpass"),
			postgres.BasicWaitStrategies(),
			testcontainers.CustomizeRequest(testcontainers.GenericContainerRequest{
				ContainerRequest: testcontainers.ContainerRequest{
					Name: fmt.Sprintf("hedwig2omp-storage-%s", sanitizeName(t.Name())),
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

func TestStoragePostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	connStr, container := setupTestPostgres(t)
	if container == nil {
		return
	}
	defer func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	ctx := context.Background()
	s, _ := openStore(t, db.Config{Driver: config.DriverPostgres, DSN: connStr})

	if err := s.AddUser(ctx, 5, 105); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddUser(ctx, 5, 999); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	users, err := s.GetAllUsers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[5] != 105 {
		t.Fatalf("unexpected users %v", users)
	}
}
