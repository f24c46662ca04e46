// Package config loads the pager configuration file.
//
// A configuration file looks like:
//
//	dialect: mysql
//	default_page_size: 20
//	slow_threshold: 250ms
//	database:
//	  driver: mysql
//	  dsn: app:secret@tcp(db:3306)/shop?parseTime=true
//	mappers:
//	  - mappers/orders.yaml
//
// PAGER_DIALECT and PAGER_DSN override the dialect and database.dsn keys.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"

	"github.com/syssam/pager"
	"github.com/syssam/pager/dialect"
	sqldrv "github.com/syssam/pager/dialect/sql"
	"github.com/syssam/pager/executor"
	"github.com/syssam/pager/mapper"
	"github.com/syssam/pager/paging"
)

// Environment variables overriding file values.
const (
	EnvDialect = "PAGER_DIALECT"
	EnvDSN     = "PAGER_DSN"
)

// Config is the pager configuration.
type Config struct {
	// Dialect selects the paging strategy. Empty means the dialect of the
	// database driver, or dialect.Default without one.
	Dialect         string        `yaml:"dialect"`
	DefaultPageSize int           `yaml:"default_page_size"`
	SlowThreshold   time.Duration `yaml:"slow_threshold"`
	Database        Database      `yaml:"database"`
	// Mappers lists statement files, relative to the configuration file.
	Mappers []string `yaml:"mappers"`
}

// Database describes the connection to open.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Default returns the configuration used for absent keys.
func Default() *Config {
	return &Config{
		DefaultPageSize: paging.DefaultPageSize,
		SlowThreshold:   100 * time.Millisecond,
	}
}

// Load reads, overrides from the environment, and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pager/config: %w", err)
	}
	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pager/config: %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, m := range c.Mappers {
		if !filepath.IsAbs(m) {
			c.Mappers[i] = filepath.Join(dir, m)
		}
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode decodes a configuration from r on top of Default. Unknown keys
// are an error.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return c, nil
}

// ApplyEnv applies the PAGER_* environment overrides.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvDialect); ok {
		c.Dialect = v
	}
	if v, ok := os.LookupEnv(EnvDSN); ok {
		c.Database.DSN = v
	}
}

// DialectName returns the effective dialect name.
func (c *Config) DialectName() string {
	if c.Dialect == "" && c.Database.Driver != "" {
		return dialect.Normalize(c.Database.Driver)
	}
	return dialect.Normalize(c.Dialect)
}

// Validate checks the configuration. An unknown dialect fails with
// *pager.UnsupportedDialectError.
func (c *Config) Validate() error {
	if name := c.DialectName(); !slices.Contains(dialect.Names(), name) {
		return pager.NewUnsupportedDialectError(name)
	}
	if c.DefaultPageSize < 0 {
		return fmt.Errorf("pager/config: default_page_size must not be negative, got %d", c.DefaultPageSize)
	}
	if c.SlowThreshold < 0 {
		return fmt.Errorf("pager/config: slow_threshold must not be negative, got %s", c.SlowThreshold)
	}
	if c.Database.DSN == "" {
		return nil
	}
	if c.Database.Driver == "" {
		return errors.New("pager/config: database.dsn is set without database.driver")
	}
	switch dialect.Normalize(c.Database.Driver) {
	case dialect.MySQL:
		if _, err := mysql.ParseDSN(c.Database.DSN); err != nil {
			return fmt.Errorf("pager/config: database.dsn: %w", err)
		}
	case dialect.Postgres:
		if strings.EqualFold(c.Database.Driver, "pgx") {
			if _, err := pgx.ParseConfig(c.Database.DSN); err != nil {
				return fmt.Errorf("pager/config: database.dsn: %w", err)
			}
			return nil
		}
		if strings.HasPrefix(c.Database.DSN, "postgres://") || strings.HasPrefix(c.Database.DSN, "postgresql://") {
			if _, err := pq.ParseURL(c.Database.DSN); err != nil {
				return fmt.Errorf("pager/config: database.dsn: %w", err)
			}
		}
	}
	return nil
}

// NewPage returns a Page, using DefaultPageSize when size <= 0.
func (c *Config) NewPage(current, size int) *paging.Page {
	if size <= 0 {
		size = c.DefaultPageSize
	}
	return paging.NewPage(current, size)
}

// Open opens the configured database.
func (c *Config) Open() (*sqldrv.Driver, error) {
	if c.Database.Driver == "" {
		return nil, errors.New("pager/config: database.driver is not set")
	}
	return sqldrv.Open(c.Database.Driver, c.Database.DSN)
}

// Statements loads the configured mapper files.
func (c *Config) Statements() (*mapper.Registry, error) {
	r, err := mapper.NewRegistry()
	if err != nil {
		return nil, err
	}
	if err := r.Load(c.Mappers...); err != nil {
		return nil, err
	}
	return r, nil
}

// Executor returns an executor for stmts with a paging interceptor for
// the configured dialect, traced with the global OpenTelemetry provider.
// opts are applied last.
func (c *Config) Executor(stmts *mapper.Registry, logger *slog.Logger, opts ...executor.Option) *executor.Executor {
	if logger == nil {
		logger = slog.Default()
	}
	name := c.DialectName()
	base := []executor.Option{
		executor.WithDialect(name),
		executor.WithLogger(logger),
		executor.WithSlowThreshold(c.SlowThreshold),
		executor.WithSlowQueryLog(),
		executor.WithTracing(nil),
		executor.WithInterceptors(paging.New(paging.WithDialect(name), paging.WithLogger(logger))),
	}
	return executor.New(stmts, append(base, opts...)...)
}
