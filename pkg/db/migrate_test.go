package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../migrations"

func TestMigrationFilesExist(t *testing.T) {
	for _, filename := range []string{
		"000001_initial_schema.up.sql",
		"000001_initial_schema.down.sql",
	} {
		_, err := os.Stat(filepath.Join(migrationsDir, filename))
		assert.NoError(t, err, "migration file %s should exist", filename)
	}
}

func TestMigrationFilesPaired(t *testing.T) {
	ups, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := os.Stat(down)
		assert.NoError(t, err, "%s has no matching down migration", filepath.Base(up))
	}
}

func TestInitialSchema_EnforcesRatingConstraints(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "000001_initial_schema.up.sql"))
	require.NoError(t, err)
	sql := string(content)

	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS consultation_ratings")
	assert.Contains(t, sql, "CHECK (score BETWEEN 1 AND 5)")
	assert.Contains(t, sql, "comment         VARCHAR(500)")
	assert.Contains(t, sql, "consultation_no TEXT NOT NULL UNIQUE")

	down, err := os.ReadFile(filepath.Join(migrationsDir, "000001_initial_schema.down.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(down), "DROP TABLE IF EXISTS consultation_ratings")
}

func TestContainsSSLMode(t *testing.T) {
	assert.True(t, containsSSLMode("postgres://u:p@db:5432/x?sslmode=verify-full"))
	assert.True(t, containsSSLMode("postgres://u:p@db:5432/x?sslmode=require"))
	assert.False(t, containsSSLMode("postgres://u:p@localhost:5432/x?sslmode=disable"))
	assert.False(t, containsSSLMode("postgres://u:p@localhost:5432/x"))
}

func TestConfigureTLS(t *testing.T) {
	cfg, err := configureTLS("postgres://localhost:5432/x", "/does/not/matter")
	require.NoError(t, err)
	assert.Nil(t, cfg, "no TLS without sslmode")

	cfg, err = configureTLS("postgres://db:5432/x?sslmode=require", "")
	require.NoError(t, err)
	assert.Nil(t, cfg, "no custom TLS without a CA bundle")

	_, err = configureTLS("postgres://db:5432/x?sslmode=require", filepath.Join(t.TempDir(), "missing.crt"))
	assert.ErrorContains(t, err, "failed to read CA certificate")

	bogus := filepath.Join(t.TempDir(), "bogus.crt")
	require.NoError(t, os.WriteFile(bogus, []byte("not a certificate"), 0o600))
	_, err = configureTLS("postgres://db:5432/x?sslmode=require", bogus)
	assert.ErrorContains(t, err, "failed to append CA certificate")
}
