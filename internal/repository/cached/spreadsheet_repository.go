// Package cached implements the spreadsheet repository on top of a CacheStore
// and a spreadsheet service client.
//
// Caching is write-once per spreadsheet: once any row of a spreadsheet is in
// the cache, Get never asks the service again, even if the sheet changed.
// Delete is the only way to force a re-fetch.
package cached

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"sync"

	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/logger"
	"github.com/vytor/sentenceflash/internal/models"
	"github.com/vytor/sentenceflash/internal/repository"
	"github.com/vytor/sentenceflash/internal/sheets"
)

// Cache keys. The layout is shared with earlier installs, so they never change.
const (
	SpreadsheetsKey = "SPREADSHEETS"
	RowsKey         = "ROWS"
)

const unknownTitle = "UNKNOWN"

type spreadsheetRepository struct {
	// mu serializes read-modify-write cycles on the cache keys. It is never
	// held across a call to the spreadsheet service.
	mu     sync.Mutex
	store  repository.CacheStore
	client sheets.ClientInterface
}

// NewSpreadsheetRepository creates a SpreadsheetRepository implementation
func NewSpreadsheetRepository(store repository.CacheStore, client sheets.ClientInterface) repository.SpreadsheetRepository {
	return &spreadsheetRepository{store: store, client: client}
}

func (r *spreadsheetRepository) List(ctx context.Context) []models.SpreadsheetRef {
	log := logger.FromContext(ctx).WithPrefix("spreadsheet_repo")
	log.Debug("listing spreadsheets")

	refs := r.readSpreadsheets(ctx)
	log.Debug("found %d spreadsheets", len(refs))
	return refs
}

func (r *spreadsheetRepository) Get(ctx context.Context, spreadsheetID, sheetName string) ([]models.Row, error) {
	log := logger.FromContext(ctx).WithPrefix("spreadsheet_repo").WithField("spreadsheet_id", spreadsheetID)

	r.mu.Lock()
	cached := rowsOf(r.readRows(ctx), spreadsheetID)
	r.mu.Unlock()
	if len(cached) > 0 {
		log.Debug("cache hit: %d rows", len(cached))
		return cached, nil
	}

	log.Debug("cache miss, fetching sheet %q", sheetName)
	vr, err := r.client.Values(ctx, spreadsheetID, sheetName)
	if err != nil {
		return nil, remoteFailure(err)
	}
	if vr.Values == nil {
		log.Warn("values response without values field")
		return nil, errors.NewRemoteError(vr.Raw, nil)
	}

	rows := make([]models.Row, 0, len(vr.Values))
	for i, cells := range vr.Values {
		rows = append(rows, models.Row{SpreadsheetID: spreadsheetID, RowIndex: i, Cells: cells})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.readRows(ctx)
	// Another Get may have cached this spreadsheet while we were fetching.
	if existing := rowsOf(all, spreadsheetID); len(existing) > 0 {
		log.Debug("rows cached by a concurrent fetch, discarding %d fetched rows", len(rows))
		return existing, nil
	}
	all = append(all, rows...)
	if err := r.write(ctx, map[string]any{RowsKey: all}); err != nil {
		log.Error("failed to cache rows: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("fetched and cached %d rows", len(rows))
	return rows, nil
}

func (r *spreadsheetRepository) Post(ctx context.Context, spreadsheetID string) (models.SpreadsheetRef, error) {
	log := logger.FromContext(ctx).WithPrefix("spreadsheet_repo").WithField("spreadsheet_id", spreadsheetID)
	log.Debug("registering spreadsheet")

	md, err := r.client.Metadata(ctx, spreadsheetID)
	if err != nil {
		return models.SpreadsheetRef{}, remoteFailure(err)
	}

	ref := models.SpreadsheetRef{ID: spreadsheetID, Title: md.Title}
	if ref.Title == "" {
		ref.Title = unknownTitle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	refs := r.readSpreadsheets(ctx)
	for _, existing := range refs {
		if existing.ID == spreadsheetID {
			log.Debug("spreadsheet already registered")
			return existing, nil
		}
	}
	if err := r.write(ctx, map[string]any{SpreadsheetsKey: append(refs, ref)}); err != nil {
		log.Error("failed to store spreadsheet: %v", err)
		return models.SpreadsheetRef{}, errors.NewInternalError(err)
	}

	log.Info("registered spreadsheet %q", ref.Title)
	return ref, nil
}

func (r *spreadsheetRepository) Delete(ctx context.Context, spreadsheetID string) error {
	log := logger.FromContext(ctx).WithPrefix("spreadsheet_repo").WithField("spreadsheet_id", spreadsheetID)
	log.Debug("deleting spreadsheet and cached rows")

	r.mu.Lock()
	defer r.mu.Unlock()

	refs := r.readSpreadsheets(ctx)
	keptRefs := make([]models.SpreadsheetRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != spreadsheetID {
			keptRefs = append(keptRefs, ref)
		}
	}

	rows := r.readRows(ctx)
	keptRows := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if row.SpreadsheetID != spreadsheetID {
			keptRows = append(keptRows, row)
		}
	}

	if err := r.write(ctx, map[string]any{SpreadsheetsKey: keptRefs, RowsKey: keptRows}); err != nil {
		log.Error("failed to delete spreadsheet: %v", err)
		return errors.NewInternalError(err)
	}

	log.Debug("removed %d spreadsheets and %d rows", len(refs)-len(keptRefs), len(rows)-len(keptRows))
	return nil
}

func (r *spreadsheetRepository) readSpreadsheets(ctx context.Context) []models.SpreadsheetRef {
	return readCollection[models.SpreadsheetRef](ctx, r.store, SpreadsheetsKey)
}

func (r *spreadsheetRepository) readRows(ctx context.Context) []models.Row {
	return readCollection[models.Row](ctx, r.store, RowsKey)
}

// readCollection decodes the JSON array under key. A missing key, a store
// failure and unparsable JSON all yield an empty collection.
func readCollection[T any](ctx context.Context, store repository.CacheStore, key string) []T {
	log := logger.FromContext(ctx).WithPrefix("spreadsheet_repo")

	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		log.Error("failed to read %s from cache, treating as empty: %v", key, err)
		return []T{}
	}
	if !ok {
		return []T{}
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn("cache entry %s is not a valid collection, treating as empty: %v", key, err)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

func (r *spreadsheetRepository) write(ctx context.Context, entries map[string]any) error {
	encoded := make(map[string][]byte, len(entries))
	for key, v := range entries {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		encoded[key] = b
	}
	if len(encoded) == 1 {
		for key, b := range encoded {
			return r.store.Put(ctx, key, b)
		}
	}
	return r.store.PutMany(ctx, encoded)
}

func rowsOf(rows []models.Row, spreadsheetID string) []models.Row {
	var out []models.Row
	for _, row := range rows {
		if row.SpreadsheetID == spreadsheetID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RowIndex < out[j].RowIndex })
	return out
}

// remoteFailure keeps typed service errors and wraps anything else as a
// remote error.
func remoteFailure(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	return errors.NewRemoteError(nil, err)
}
