package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
)

// setupTestDB creates a migrated in-memory database named after the test.
// Writer and reader share it through cache=shared.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Test names contain slashes for subtests; escape them for the URI.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		url.PathEscape(t.Name()),
	)

	writer, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "open test writer")
	writer.SetMaxOpenConns(1)
	require.NoError(t, writer.PingContext(context.Background()), "ping test writer")

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("open test reader: %v", err)
	}
	reader.SetMaxOpenConns(4)

	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer), "run migrations")
	return db
}

// seedAccount inserts an account through repo and returns its id.
func seedAccount(t *testing.T, repo *AccountRepo, name string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), model.NewAccount{
		Name:   name,
		Ops:    "ops-" + name,
		Cookie: "PHPSESSID=" + name,
	})
	require.NoError(t, err)
	return id
}
