package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/sentenceflash/internal/logger"
	"github.com/vytor/sentenceflash/internal/repository"
)

const cacheTable = "cache_entries"

type cacheStore struct {
	db *sqlx.DB
}

// NewCacheStore creates a CacheStore backed by the cache_entries table.
func NewCacheStore(db *sqlx.DB) repository.CacheStore {
	return &cacheStore{db: db}
}

func (s *cacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("cache_store")

	query, args, err := sqlBuilder.Select("value").From(cacheTable).Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, false, err
	}

	var value string
	err = s.db.GetContext(ctx, &value, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("cache miss: key=%s", key)
		return nil, false, nil
	}
	if err != nil {
		log.Error("failed to read cache entry %s: %v", key, err)
		return nil, false, err
	}
	log.Debug("cache hit: key=%s, bytes=%d", key, len(value))
	return []byte(value), true, nil
}

func (s *cacheStore) Put(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("cache_store")
	log.Debug("writing cache entry: key=%s, bytes=%d", key, len(value))

	query, args, err := upsert(key, value).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to write cache entry %s: %v", key, err)
		return err
	}
	return nil
}

func (s *cacheStore) PutMany(ctx context.Context, entries map[string][]byte) error {
	log := logger.FromContext(ctx).WithPrefix("cache_store")
	log.Debug("writing %d cache entries", len(entries))

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return tx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, key := range keys {
			query, args, err := upsert(key, entries[key]).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				log.Error("failed to write cache entry %s: %v", key, err)
				return err
			}
		}
		return nil
	})
}

func upsert(key string, value []byte) squirrel.InsertBuilder {
	return sqlBuilder.Insert(cacheTable).
		Columns("key", "value", "updated_at").
		Values(key, string(value), squirrel.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at")
}
