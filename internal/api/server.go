package api

import (
	"context"

	"github.com/vytor/sentenceflash/internal/auth"
	"github.com/vytor/sentenceflash/internal/repository"
	"github.com/vytor/sentenceflash/internal/training"
)

// Pinger reports whether the cache database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Spreadsheets repository.SpreadsheetRepository
	Training     *training.Machine
	Gate         *auth.Gate
	DB           Pinger
}
