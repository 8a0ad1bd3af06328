package configuration

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Database points at either a local sqlite file or a remote libsql
// instance. When both are empty the database is considered disabled.
type Database struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Database) Enabled() bool {
	return config.File != "" || config.Url != ""
}

func (config Database) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		return sql.Open("sqlite", config.File)
	}

	dsn := config.Url
	if config.AuthToken != "" {
		u, err := url.Parse(config.Url)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		query := u.Query()
		query.Set("authToken", config.AuthToken)
		u.RawQuery = query.Encode()
		dsn = u.String()
	}
	return sql.Open("libsql", dsn)
}
