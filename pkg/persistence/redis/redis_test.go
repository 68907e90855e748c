package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/persistence"
	"github.com/dukex/n8ngen/pkg/persistence/redis"
	"github.com/dukex/n8ngen/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var redisURL string

func setupArchive(t *testing.T, opts ...redis.Option) (*redis.Archive, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	t.Cleanup(cancel)

	if redisURL == "" {
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections"),
			},
			Started: true,
		})
		require.NoError(t, err)

		endpoint, err := container.Endpoint(ctx, "")
		require.NoError(t, err)

		redisURL = "redis://" + endpoint + "/0"
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// each test gets its own key namespace
	opts = append(opts, redis.WithPrefix("test:"+ids.NewID()+":"))

	archive, err := redis.NewArchive(ctx, logger, redisURL, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, archive.Close(context.Background()))
	})

	return archive, ctx
}

func TestNewArchive_InvalidURL(t *testing.T) {
	_, err := redis.NewArchive(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), "http://localhost")

	assert.Error(t, err)
}

func TestArchive_SaveAndByID(t *testing.T) {
	archive, ctx := setupArchive(t)

	require.NoError(t, archive.HealthCheck(ctx))

	record := &models.Record{
		Prompt:   "daily report by email",
		Status:   "success",
		Provider: "gemini",
		Workflow: testutil.CreateTestWorkflowWithNodes(),
	}
	require.NoError(t, archive.Save(ctx, record))

	loaded, err := archive.ByID(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.Prompt, loaded.Prompt)
	assert.Equal(t, record.Provider, loaded.Provider)
	assert.Equal(t, record.Workflow.Connections, loaded.Workflow.Connections)
	assert.True(t, record.CreatedAt.Equal(loaded.CreatedAt))

	_, err = archive.ByID(ctx, ids.NewID())
	assert.True(t, persistence.IsRecordNotFound(err))
}

func TestArchive_Recent(t *testing.T) {
	archive, ctx := setupArchive(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := range 4 {
		require.NoError(t, archive.Save(ctx, &models.Record{
			Prompt:    "prompt",
			Status:    "success",
			Workflow:  testutil.CreateTestWorkflow(),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := archive.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].CreatedAt.Equal(base.Add(3*time.Second)))
	assert.True(t, records[2].CreatedAt.Equal(base.Add(time.Second)))
}

func TestArchive_RecentSkipsExpired(t *testing.T) {
	archive, ctx := setupArchive(t, redis.WithTTL(time.Second))

	require.NoError(t, archive.Save(ctx, &models.Record{Prompt: "p", Status: "success", Workflow: testutil.CreateTestWorkflow()}))

	time.Sleep(1500 * time.Millisecond)

	records, err := archive.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestArchive_Prune(t *testing.T) {
	archive, ctx := setupArchive(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := range 4 {
		require.NoError(t, archive.Save(ctx, &models.Record{
			Prompt:    "prompt",
			Status:    "success",
			Workflow:  testutil.CreateTestWorkflow(),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	removed, err := archive.Prune(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	records, err := archive.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[1].CreatedAt.Equal(base.Add(2*time.Hour)))

	removed, err = archive.Prune(ctx, base)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
