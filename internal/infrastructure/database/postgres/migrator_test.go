// Integration tests for schema migrations. They require a live PostgreSQL
// instance reachable via HSCODE_TEST_DB_URL.
//
//go:build integration

package postgres_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/postgres"
)

const testMigrationsPath = "file://../../../../migrations"

func getTestDBURL(t *testing.T) string {
	t.Helper()

	dbURL := os.Getenv("HSCODE_TEST_DB_URL")
	if dbURL == "" {
		t.Skip("HSCODE_TEST_DB_URL not set; skipping integration test")
	}
	return dbURL
}

func TestRunMigrations_AppliesAllMigrations(t *testing.T) {
	dbURL := getTestDBURL(t)

	require.NoError(t, postgres.RunMigrations(dbURL, testMigrationsPath))

	version, dirty, err := postgres.MigrationStatus(dbURL, testMigrationsPath)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Greater(t, version, uint(0))
}

func TestRunMigrations_IdempotentWhenUpToDate(t *testing.T) {
	dbURL := getTestDBURL(t)

	require.NoError(t, postgres.RunMigrations(dbURL, testMigrationsPath))
	// A second run finds no pending migrations and must not fail.
	assert.NoError(t, postgres.RunMigrations(dbURL, testMigrationsPath))
}

func TestRollbackMigrations_StepsBackOne(t *testing.T) {
	dbURL := getTestDBURL(t)

	require.NoError(t, postgres.RunMigrations(dbURL, testMigrationsPath))
	before, _, err := postgres.MigrationStatus(dbURL, testMigrationsPath)
	require.NoError(t, err)

	require.NoError(t, postgres.RollbackMigrations(dbURL, testMigrationsPath, 1))

	after, dirty, err := postgres.MigrationStatus(dbURL, testMigrationsPath)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Less(t, after, before)

	// Restore for the other tests.
	require.NoError(t, postgres.RunMigrations(dbURL, testMigrationsPath))
}

func TestRollbackMigrations_RejectsNonPositiveSteps(t *testing.T) {
	err := postgres.RollbackMigrations("postgres://ignored", testMigrationsPath, 0)
	assert.Error(t, err)
}

//Personal.AI order the ending
