package testutil

import (
	"database/sql"
	"opspulse/lib/telemetry"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

type Params struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type Result struct {
	DB *sql.DB
}

func Setup(t testing.TB, params Params) (Result, func()) {
	cleanup := telemetry.SetupForTesting(t, params.Name)

	if params.DbSchema == "" {
		return Result{}, cleanup
	}

	dbpath := params.DbPath
	if dbpath == "" {
		dbpath = ":memory:"
	}
	sqlite, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	_, err = sqlite.Exec(params.DbSchema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}

	return Result{DB: sqlite}, func() {
		sqlite.Close()
		cleanup()
	}
}
