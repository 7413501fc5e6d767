package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	driverPostgres = "postgres"
	// go-sqlite3 with a Unicode-aware lower(); the built-in one folds ASCII only
	driverSQLite = "sqlite3_unicode"
)

func init() {
	sql.Register(driverSQLite, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(driverSQLite, sqlx.QUESTION)
}

// DB wraps the sqlx connection pool shared by all repositories
type DB struct {
	*sqlx.DB
}

// ParseURL maps DATABASE_URL onto a driver name and DSN.
// postgres:// and postgresql:// go to lib/pq; sqlite://path, file: URIs and :memory: go to go-sqlite3.
func ParseURL(databaseURL string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return driverPostgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return driverSQLite, strings.TrimPrefix(databaseURL, "sqlite://"), nil
	case strings.HasPrefix(databaseURL, "file:"), databaseURL == ":memory:":
		return driverSQLite, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", databaseURL)
	}
}

// Connect opens and pings the database, then applies the schema migrations.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	driver, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	if driver == driverSQLite && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == driverSQLite {
		// SQLite doesn't support multiple writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	db := &DB{DB: conn}
	if err := Migrate(db); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// IsPostgres reports whether the pool talks to Postgres
func (db *DB) IsPostgres() bool {
	return db.DriverName() == driverPostgres
}
