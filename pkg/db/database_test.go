package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "", DriverPgx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	_, err = Open(context.Background(), "file::memory:", "mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown DB_DRIVER")
}

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	gdb, err := Open(context.Background(), ":memory:", DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), gdb))
	require.NoError(t, Close(gdb))
}
