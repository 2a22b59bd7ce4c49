// Package repository opens the card store named by DATABASE_URL.
package repository

import (
	"strings"

	"github.com/ChoisMath/edutech/pkg/adapters/repository/postgres"
	"github.com/ChoisMath/edutech/pkg/adapters/repository/sqlite"
	"github.com/ChoisMath/edutech/pkg/ports"
)

// Backend names the storage engine a DATABASE_URL selects.
func Backend(dbURL string) string {
	if IsPostgres(dbURL) {
		return "postgres"
	}
	return sqlite.DriverFor(dbURL)
}

func IsPostgres(dbURL string) bool {
	return strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://")
}

// Open connects and migrates. Postgres URLs go through gorm, everything else
// through database/sql with the local or Turso SQLite driver.
func Open(dbURL string) (ports.CardRepository, error) {
	if IsPostgres(dbURL) {
		return postgres.NewPostgresRepository(dbURL)
	}
	return sqlite.NewSQLiteRepository(dbURL)
}
