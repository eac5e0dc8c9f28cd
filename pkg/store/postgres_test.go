package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetPostgres empties the tables so each test starts clean.
func resetPostgres(t *testing.T, s *PostgresStore) {
	t.Helper()
	_, err := s.conn.Exec(context.Background(), "TRUNCATE provenance, blobs")
	require.NoError(t, err)
}
