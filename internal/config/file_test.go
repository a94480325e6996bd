// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sqliteConfig = `
[database]
driver = sqlite
file = /var/lib/hedwig2omp/users.db

[affiliation_code]
JP = Japan
TW = Taiwan
CN = China
`

func TestParseSQLite(t *testing.T) {
	c, err := Parse([]byte(sqliteConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Database.Driver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", c.Database.Driver)
	}
	if c.Database.File != "/var/lib/hedwig2omp/users.db" {
		t.Fatalf("unexpected file %q", c.Database.File)
	}
	if !c.Database.IsEmbedded() {
		t.Fatal("expected embedded database")
	}
	if c.OMP != nil {
		t.Fatal("expected no omp section")
	}

	expected := []AffiliationCode{
		{Code: "JP", Name: "Japan"},
		{Code: "TW", Name: "Taiwan"},
		{Code: "CN", Name: "China"},
	}
	if !reflect.DeepEqual(c.AffiliationCodes, expected) {
		t.Fatalf("expected codes %v, got %v", expected, c.AffiliationCodes)
	}

	names := c.AffiliationCodeNames()
	if names["TW"] != "Taiwan" {
		t.Fatalf("expected TW to map to Taiwan, got %q", names["TW"])
	}
}

func TestParseClientServer(t *testing.T) {
	data := `
[database]
driver = mysql
host = db.example.org
port = 3306
database = hedwig2omp
user = h2o
password = p#ss;word

[omp]
driver = postgres
dsn = postgres://omp@omp.example.org/omp
`
	c, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Database.Port != 3306 {
		t.Fatalf("expected port 3306, got %d", c.Database.Port)
	}
	if c.Database.Password != "p#ss;word" {
		t.Fatalf("inline comment characters must be kept, got %q", c.Database.Password)
	}
	if c.OMP == nil {
		t.Fatal("expected omp section")
	}
	if c.OMP.Driver != DriverPostgres || c.OMP.DSN == "" {
		t.Fatalf("unexpected omp config %+v", c.OMP)
	}
	if c.OMP.UserTable != defaultOMPUserTable {
		t.Fatalf("expected default user table, got %q", c.OMP.UserTable)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		section string
		key     string
	}{
		{
			name:    "missing database section",
			data:    "[affiliation_code]\nJP = Japan\n",
			section: "database",
		},
		{
			name:    "unknown driver",
			data:    "[database]\ndriver = oracle\n",
			section: "database",
			key:     "driver",
		},
		{
			name:    "missing driver",
			data:    "[database]\nfile = x.db\n",
			section: "database",
			key:     "driver",
		},
		{
			name:    "sqlite without file",
			data:    "[database]\ndriver = sqlite\n",
			section: "database",
			key:     "file",
		},
		{
			name:    "client server without host",
			data:    "[database]\ndriver = postgres\ndatabase = x\nuser = y\n",
			section: "database",
			key:     "host",
		},
		{
			name:    "omp driver not supported",
			data:    "[database]\ndriver = sqlite\nfile = x.db\n[omp]\ndriver = mysql\nhost = h\ndatabase = d\nuser = u\n",
			section: "omp",
			key:     "driver",
		},
		{
			name:    "empty affiliation name",
			data:    "[database]\ndriver = sqlite\nfile = x.db\n[affiliation_code]\nJP =\n",
			section: "affiliation_code",
			key:     "JP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected a configuration error, got %v", err)
			}

			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if cerr.Section != tt.section {
				t.Fatalf("expected section %q, got %q", tt.section, cerr.Section)
			}
			if cerr.Key != tt.key {
				t.Fatalf("expected key %q, got %q", tt.key, cerr.Key)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "etc"), 0o755); err != nil {
		t.Fatalf("failed to create etc dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(sqliteConfig), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Path() != filepath.Join(dir, FileName) {
		t.Fatalf("unexpected path %q", c.Path())
	}

	_, err = Load(t.TempDir())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error for missing file, got %v", err)
	}
}
