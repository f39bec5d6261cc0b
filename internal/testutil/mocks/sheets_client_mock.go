package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/sentenceflash/internal/sheets"
)

// MockSheetsClient is a mock implementation of sheets.ClientInterface
type MockSheetsClient struct {
	mock.Mock
}

var _ sheets.ClientInterface = (*MockSheetsClient)(nil)

func (m *MockSheetsClient) Metadata(ctx context.Context, spreadsheetID string) (*sheets.Metadata, error) {
	args := m.Called(ctx, spreadsheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sheets.Metadata), args.Error(1)
}

func (m *MockSheetsClient) Values(ctx context.Context, spreadsheetID, sheetName string) (*sheets.ValueRange, error) {
	args := m.Called(ctx, spreadsheetID, sheetName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sheets.ValueRange), args.Error(1)
}
