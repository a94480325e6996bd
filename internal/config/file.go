// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/ini.v1"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	sectionDatabase    = "database"
	sectionOMP         = "omp"
	sectionAffiliation = "affiliation_code"

	defaultOMPUserTable = "omp.ompuser"
)

// FileName is the location of the configuration file relative to the
// configuration directory.
var FileName = filepath.Join("etc", "hedwig2omp.ini")

var (
	identityDrivers = []string{DriverSQLite, DriverMySQL, DriverPostgres}
	ompDrivers      = []string{DriverSQLite, DriverPostgres}
)

// Database describes one relational store connection.
type Database struct {
	Driver   string `ini:"driver" validate:"required"`
	File     string `ini:"file" validate:"required_if=Driver sqlite"`
	DSN      string `ini:"dsn"`
	Host     string `ini:"host"`
	Port     int    `ini:"port" validate:"omitempty,min=1,max=65535"`
	Database string `ini:"database"`
	User     string `ini:"user"`
	Password string `ini:"password"`
}

// IsEmbedded reports whether the store is a local file rather than a server.
func (d Database) IsEmbedded() bool {
	return d.Driver == DriverSQLite
}

// OMP is the read-only connection to the OMP user directory.
type OMP struct {
	Database  `ini:",extends"`
	UserTable string `ini:"user_table"`
}

// AffiliationCode pairs a controlled OMP affiliation code with the
// affiliation name as recorded in Hedwig.
type AffiliationCode struct {
	Code string
	Name string
}

// Config is the parsed contents of the configuration file. It is built once
// per process and handed to the components that need it.
type Config struct {
	Database         Database
	OMP              *OMP
	AffiliationCodes []AffiliationCode

	path string
}

// Path returns the file the configuration was read from, if any.
func (c *Config) Path() string {
	return c.path
}

// AffiliationCodeNames returns the configured codes as a lookup table.
func (c *Config) AffiliationCodeNames() map[string]string {
	names := make(map[string]string, len(c.AffiliationCodes))
	for _, ac := range c.AffiliationCodes {
		names[ac.Code] = ac.Name
	}

	return names
}

// Load reads the configuration file from the given directory, falling back
// to the working directory when dir is empty.
func Load(dir string) (*Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, &ConfigurationError{Reason: "unable to determine working directory", Err: err}
		}
		dir = wd
	}

	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile reads and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("unable to read %s", path), Err: err}
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.path = path

	return c, nil
}

// Parse reads and validates configuration file contents.
func Parse(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, &ConfigurationError{Reason: "unable to parse configuration file", Err: err}
	}

	c := new(Config)

	if !f.HasSection(sectionDatabase) {
		return nil, NewConfigurationError(sectionDatabase, "", "section is missing")
	}
	if err := f.Section(sectionDatabase).MapTo(&c.Database); err != nil {
		return nil, &ConfigurationError{Section: sectionDatabase, Reason: "invalid section", Err: err}
	}

	if f.HasSection(sectionOMP) {
		omp := new(OMP)
		if err := f.Section(sectionOMP).MapTo(omp); err != nil {
			return nil, &ConfigurationError{Section: sectionOMP, Reason: "invalid section", Err: err}
		}
		if omp.UserTable == "" {
			omp.UserTable = defaultOMPUserTable
		}
		c.OMP = omp
	}

	if f.HasSection(sectionAffiliation) {
		for _, key := range f.Section(sectionAffiliation).Keys() {
			c.AffiliationCodes = append(c.AffiliationCodes, AffiliationCode{
				Code: key.Name(),
				Name: key.String(),
			})
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks the driver names and the fields each driver needs.
func (c *Config) Validate() error {
	if err := validateDatabase(sectionDatabase, c.Database, identityDrivers); err != nil {
		return err
	}

	if c.OMP != nil {
		if err := validateDatabase(sectionOMP, c.OMP.Database, ompDrivers); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(c.AffiliationCodes))
	for _, ac := range c.AffiliationCodes {
		if seen[ac.Code] {
			return NewConfigurationError(sectionAffiliation, ac.Code, "duplicate affiliation code")
		}
		if ac.Name == "" {
			return NewConfigurationError(sectionAffiliation, ac.Code, "affiliation name is empty")
		}
		seen[ac.Code] = true
	}

	return nil
}

func validateDatabase(section string, d Database, drivers []string) error {
	if d.Driver == "" {
		return NewConfigurationError(section, "driver", "driver is required")
	}
	if !slices.Contains(drivers, d.Driver) {
		return NewConfigurationError(section, "driver", fmt.Sprintf("unknown database type %q", d.Driver))
	}

	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return NewConfigurationError(section, iniKey(verrs[0].Field()), fmt.Sprintf("failed on the %q rule", verrs[0].Tag()))
		}
		return &ConfigurationError{Section: section, Reason: "invalid section", Err: err}
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(clientServerValidation, Database{})

	return v
}

// clientServerValidation requires connection details for server drivers
// unless a complete DSN was supplied.
func clientServerValidation(sl validator.StructLevel) {
	d := sl.Current().Interface().(Database)

	if d.IsEmbedded() || d.DSN != "" {
		return
	}

	if d.Host == "" {
		sl.ReportError(d.Host, "Host", "Host", "required_without_dsn", "")
	}
	if d.Database == "" {
		sl.ReportError(d.Database, "Database", "Database", "required_without_dsn", "")
	}
	if d.User == "" {
		sl.ReportError(d.User, "User", "User", "required_without_dsn", "")
	}
}

func iniKey(field string) string {
	return strings.ToLower(field)
}
