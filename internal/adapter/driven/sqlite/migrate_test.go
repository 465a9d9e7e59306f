package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t) // First RunMigrations happens inside the helper.

	require.NoError(t, RunMigrations(db.Writer))

	// The schema must be usable after the repeated run.
	var count int
	err := db.Reader.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM metrics_snapshots`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
