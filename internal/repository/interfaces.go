package repository

import (
	"context"

	"github.com/vytor/sentenceflash/internal/models"
)

// CacheStore is a durable key/value store holding JSON documents.
type CacheStore interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	// PutMany writes all entries atomically.
	PutMany(ctx context.Context, entries map[string][]byte) error
}

// SpreadsheetRepository mediates between the cache and the spreadsheet service.
type SpreadsheetRepository interface {
	List(ctx context.Context) []models.SpreadsheetRef
	Get(ctx context.Context, spreadsheetID, sheetName string) ([]models.Row, error)
	Post(ctx context.Context, spreadsheetID string) (models.SpreadsheetRef, error)
	Delete(ctx context.Context, spreadsheetID string) error
}
