// Package seed samples real values from a live database and attaches them
// to parsed API parameters, so generated requests carry production-like
// data instead of purely synthetic values.
package seed

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb" // sqlserver
	_ "github.com/go-sql-driver/mysql"   // mysql
	_ "github.com/lib/pq"                // postgres

	"github.com/rs/zerolog"
)

// Config holds the database connection settings.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// Store is an open database handle plus the driver-specific SQL dialect
// bits needed for introspection.
type Store struct {
	db     *sql.DB
	driver string
	log    zerolog.Logger
}

// Open connects and verifies the connection.
func Open(cfg Config, log zerolog.Logger) (*Store, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("driver", cfg.Driver).Str("host", cfg.Host).Str("database", cfg.Name).
		Msg("connected to seed database")
	return &Store{db: db, driver: cfg.Driver, log: log}, nil
}

// Close releases the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func buildDSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name), nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name), nil
	case "sqlserver":
		return fmt.Sprintf("server=%s;port=%d;user id=%s;password=%s;database=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// placeholder returns the positional parameter marker for the driver.
func (s *Store) placeholder(n int) string {
	switch s.driver {
	case "postgres":
		return fmt.Sprintf("$%d", n)
	case "sqlserver":
		return fmt.Sprintf("@p%d", n)
	default:
		return "?"
	}
}
