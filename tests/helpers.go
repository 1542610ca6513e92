// Package tests holds database-backed helpers and end-to-end suites.
package tests

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationScripts возвращает все *.up.sql по порядку имён
func migrationScripts(t *testing.T) []string {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(filepath.Dir(filename)), "migrations")

	scripts, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, scripts, "no migrations in %s", dir)
	sort.Strings(scripts)
	return scripts
}

// SetupTestDB поднимает postgres в контейнере с применёнными миграциями.
// Тест пропускается, если Docker недоступен.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("tasky"),
		postgres.WithUsername("tasky"),
		postgres.WithPassword("tasky"),
		postgres.WithInitScripts(migrationScripts(t)...),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	return pool, func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("terminate container: %v", err)
		}
	}
}

// TruncateTables очищает данные, оставляя список default
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "TRUNCATE tasks, notes, users, idempotency_keys CASCADE")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "DELETE FROM lists WHERE id <> 'default'")
	require.NoError(t, err)
}

// SeedTasks вставляет count задач без позиций; каждая следующая новее,
// каждая третья (начиная с первой) важная.
func SeedTasks(t *testing.T, pool *pgxpool.Pool, count int) []string {
	t.Helper()
	ctx := context.Background()

	base := time.Now().Add(-time.Duration(count) * time.Minute)
	ids := make([]string, count)
	for i := range ids {
		ids[i] = ulid.Make().String()
		_, err := pool.Exec(ctx,
			`INSERT INTO tasks (id, text, is_important, created_at) VALUES ($1, $2, $3, $4)`,
			ids[i], fmt.Sprintf("Task %d", i+1), i%3 == 0, base.Add(time.Duration(i)*time.Minute),
		)
		require.NoError(t, err, "seed task %d", i)
	}
	return ids
}
