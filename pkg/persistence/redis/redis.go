// Package redis provides Redis persistence for the generation archive.
//
// Records are stored as JSON strings under "<prefix>record:<id>" and indexed by
// creation time in the sorted set "<prefix>records".
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/n8ngen/pkg/ids"
	"github.com/dukex/n8ngen/pkg/models"
	"github.com/dukex/n8ngen/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "n8ngen:"

// Archive implements persistence.Archive on Redis.
type Archive struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures an Archive.
type Option func(*Archive)

// WithTTL expires records after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(a *Archive) {
		a.ttl = ttl
	}
}

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(a *Archive) {
		a.prefix = prefix
	}
}

// NewArchive connects to the Redis server at redisURL (redis:// or rediss://).
func NewArchive(ctx context.Context, logger *slog.Logger, redisURL string, opts ...Option) (*Archive, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	archive := NewArchiveWithClient(redis.NewClient(options), logger, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := archive.client.Ping(pingCtx).Err(); err != nil {
		_ = archive.client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	archive.logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return archive, nil
}

// NewArchiveWithClient wraps an existing client.
func NewArchiveWithClient(client redis.UniversalClient, logger *slog.Logger, opts ...Option) *Archive {
	archive := &Archive{
		client: client,
		prefix: DefaultPrefix,
		logger: logger.With("module", "redis_archive"),
	}

	for _, opt := range opts {
		opt(archive)
	}

	return archive
}

// Save writes the record and adds it to the time index.
func (a *Archive) Save(ctx context.Context, record *models.Record) error {
	if err := persistence.Prepare(record); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return persistence.NewRecordError("Save", record.ID, err)
	}

	_, err = a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, a.recordKey(record.ID), data, a.ttl)
		pipe.ZAdd(ctx, a.indexKey(), redis.Z{
			Score:  float64(record.CreatedAt.UnixMilli()),
			Member: record.ID,
		})

		return nil
	})
	if err != nil {
		return persistence.NewRecordError("Save", record.ID, err)
	}

	return nil
}

// ByID returns a record by its ID.
func (a *Archive) ByID(ctx context.Context, id string) (*models.Record, error) {
	if !ids.IsID(id) {
		return nil, persistence.NewRecordError("ByID", id, persistence.ErrRecordNotFound)
	}

	data, err := a.client.Get(ctx, a.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewRecordError("ByID", id, persistence.ErrRecordNotFound)
		}

		return nil, persistence.NewRecordError("ByID", id, err)
	}

	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}

	return &record, nil
}

// Recent returns the newest records first. Index entries whose record expired are dropped.
func (a *Archive) Recent(ctx context.Context, limit int) ([]*models.Record, error) {
	limit = persistence.NormalizeLimit(limit)

	recordIDs, err := a.client.ZRevRange(ctx, a.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read record index: %w", err)
	}

	records := make([]*models.Record, 0, len(recordIDs))
	if len(recordIDs) == 0 {
		return records, nil
	}

	keys := make([]string, len(recordIDs))
	for i, id := range recordIDs {
		keys[i] = a.recordKey(id)
	}

	values, err := a.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var expired []any

	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			expired = append(expired, recordIDs[i])

			continue
		}

		var record models.Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", recordIDs[i], err)
		}

		records = append(records, &record)
	}

	if len(expired) > 0 {
		if err := a.client.ZRem(ctx, a.indexKey(), expired...).Err(); err != nil {
			a.logger.WarnContext(ctx, "Failed to prune expired records from index", "error", err)
		}
	}

	return records, nil
}

// Prune deletes the records indexed before the cutoff.
func (a *Archive) Prune(ctx context.Context, before time.Time) (int, error) {
	maxScore := "(" + strconv.FormatInt(before.UnixMilli(), 10)

	recordIDs, err := a.client.ZRangeByScore(ctx, a.indexKey(), &redis.ZRangeBy{Min: "-inf", Max: maxScore}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read record index: %w", err)
	}

	if len(recordIDs) == 0 {
		return 0, nil
	}

	keys := make([]string, len(recordIDs))
	for i, id := range recordIDs {
		keys[i] = a.recordKey(id)
	}

	_, err = a.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRemRangeByScore(ctx, a.indexKey(), "-inf", maxScore)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune records: %w", err)
	}

	return len(recordIDs), nil
}

// HealthCheck pings the server.
func (a *Archive) HealthCheck(ctx context.Context) error {
	if err := a.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the client.
func (a *Archive) Close(_ context.Context) error {
	if err := a.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

func (a *Archive) recordKey(id string) string {
	return a.prefix + "record:" + id
}

func (a *Archive) indexKey() string {
	return a.prefix + "records"
}
