// Package workbook serves spreadsheets from local .xlsx files. The spreadsheet
// id is the workbook's file name inside the configured directory.
package workbook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/logger"
	"github.com/vytor/sentenceflash/internal/models"
	"github.com/vytor/sentenceflash/internal/sheets"
	"github.com/xuri/excelize/v2"
)

type Source struct {
	dir string
}

var _ sheets.ClientInterface = (*Source)(nil)

func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

func (s *Source) Metadata(ctx context.Context, spreadsheetID string) (*sheets.Metadata, error) {
	log := logger.FromContext(ctx).WithPrefix("workbook").WithField("spreadsheet_id", spreadsheetID)

	f, err := s.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	props, err := f.GetDocProps()
	if err != nil {
		log.Warn("failed to read document properties: %v", err)
		return &sheets.Metadata{SpreadsheetID: spreadsheetID}, nil
	}
	return &sheets.Metadata{SpreadsheetID: spreadsheetID, Title: props.Title}, nil
}

// Values returns every row of sheetName. A missing sheet yields a ValueRange
// without values, the same shape the remote service produces.
func (s *Source) Values(ctx context.Context, spreadsheetID, sheetName string) (*sheets.ValueRange, error) {
	log := logger.FromContext(ctx).WithPrefix("workbook").WithFields(map[string]any{
		"spreadsheet_id": spreadsheetID,
		"sheet":          sheetName,
	})

	f, err := s.open(spreadsheetID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		log.Warn("sheet not found")
		raw, _ := json.Marshal(map[string]any{"range": sheetName, "sheets": f.GetSheetList()})
		return &sheets.ValueRange{Range: sheetName, Raw: raw}, nil
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		log.Error("failed to read rows: %v", err)
		return nil, errors.NewRemoteError(nil, err)
	}

	values := make([][]models.Cell, 0, len(rows))
	for _, row := range rows {
		cells := make([]models.Cell, len(row))
		for i, v := range row {
			cells[i] = parseValue(v)
		}
		values = append(values, cells)
	}

	vr := &sheets.ValueRange{Range: sheetName, MajorDimension: "ROWS", Values: values}
	vr.Raw, _ = json.Marshal(vr)
	log.Debug("read %d rows", len(values))
	return vr, nil
}

func (s *Source) open(spreadsheetID string) (*excelize.File, error) {
	if spreadsheetID == "" || spreadsheetID != filepath.Base(spreadsheetID) || strings.HasPrefix(spreadsheetID, ".") {
		return nil, errors.NewValidationError("spreadsheetId", "must be a workbook file name")
	}
	path := filepath.Join(s.dir, spreadsheetID)
	if filepath.Ext(path) == "" {
		path += ".xlsx"
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("workbook", spreadsheetID)
		}
		return nil, errors.NewRemoteError(nil, fmt.Errorf("open workbook: %w", err))
	}
	return f, nil
}

// parseValue maps excelize's formatted strings onto cells: "" is absent,
// everything else is text. Numeric conversion happens later through Cell.Int.
func parseValue(v string) models.Cell {
	if v == "" {
		return models.AbsentCell()
	}
	return models.TextCell(v)
}
