package sheets

import (
	"context"
	"encoding/json"

	"github.com/vytor/sentenceflash/internal/models"
	"golang.org/x/oauth2"
)

// ClientInterface is what the spreadsheet repository needs from a spreadsheet
// service. Implementations return a NOT_AUTHORIZED AppError when there is no
// active session.
type ClientInterface interface {
	Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error)
	Values(ctx context.Context, spreadsheetID, sheetName string) (*ValueRange, error)
}

// Session supplies credentials for the signed-in user. ok is false when
// nobody is signed in.
type Session interface {
	TokenSource(ctx context.Context) (ts oauth2.TokenSource, ok bool)
}

// Metadata is the subset of spreadsheet properties the trainer uses.
type Metadata struct {
	SpreadsheetID string
	Title         string
}

// ValueRange is one sheet's values. Values is nil when the response carried
// no "values" field; Raw keeps the response body for error reporting.
type ValueRange struct {
	Range          string          `json:"range"`
	MajorDimension string          `json:"majorDimension"`
	Values         [][]models.Cell `json:"values"`
	Raw            json.RawMessage `json:"-"`
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
