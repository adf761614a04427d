package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("not found")

func Connect(ctx context.Context, databaseURL string, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Str("database", SafeDatabaseURL(databaseURL)).Msg("connecting to database")

	if err := checkSSLParams(databaseURL); err != nil {
		return nil, fmt.Errorf("failed to configure SSL: %w", err)
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	logger.Info().Msg("database connection established")
	return db, nil
}

// SafeDatabaseURL strips the password from a database URL for logging.
func SafeDatabaseURL(databaseURL string) string {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "(unparseable url)"
	}

	safe := &url.URL{
		Scheme:   parsed.Scheme,
		Host:     parsed.Host,
		Path:     parsed.Path,
		RawQuery: parsed.RawQuery,
	}
	if parsed.User != nil {
		if username := parsed.User.Username(); username != "" {
			safe.User = url.User(username)
		}
	}
	return safe.String()
}

// checkSSLParams rejects SSL modes lib/pq cannot satisfy with the given
// parameters.
func checkSSLParams(databaseURL string) error {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	query := parsed.Query()
	switch mode := query.Get("sslmode"); mode {
	case "", "disable", "require":
		return nil
	case "verify-ca", "verify-full":
		if query.Get("sslrootcert") == "" {
			return fmt.Errorf("sslrootcert is required for %s mode", mode)
		}
		if (query.Get("sslcert") == "") != (query.Get("sslkey") == "") {
			return fmt.Errorf("both sslcert and sslkey are required for client certificates")
		}
		return nil
	default:
		return fmt.Errorf("unsupported SSL mode: %s", mode)
	}
}
