package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/sentenceflash/internal/models"
)

// MockSpreadsheetRepository is a mock implementation of repository.SpreadsheetRepository
type MockSpreadsheetRepository struct {
	mock.Mock
}

func (m *MockSpreadsheetRepository) List(ctx context.Context) []models.SpreadsheetRef {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.SpreadsheetRef)
}

func (m *MockSpreadsheetRepository) Get(ctx context.Context, spreadsheetID, sheetName string) ([]models.Row, error) {
	args := m.Called(ctx, spreadsheetID, sheetName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Row), args.Error(1)
}

func (m *MockSpreadsheetRepository) Post(ctx context.Context, spreadsheetID string) (models.SpreadsheetRef, error) {
	args := m.Called(ctx, spreadsheetID)
	return args.Get(0).(models.SpreadsheetRef), args.Error(1)
}

func (m *MockSpreadsheetRepository) Delete(ctx context.Context, spreadsheetID string) error {
	args := m.Called(ctx, spreadsheetID)
	return args.Error(0)
}
