// Package training holds the flashcard session: which spreadsheet is open,
// its cards, the cursor and whether the answer is shown.
package training

import (
	"context"
	"sync"

	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/logger"
	"github.com/vytor/sentenceflash/internal/models"
	"github.com/vytor/sentenceflash/internal/repository"
	"github.com/vytor/sentenceflash/internal/worker"
)

type Status string

const (
	StatusReady   Status = "READY"
	StatusLoading Status = "LOADING"
	StatusLoaded  Status = "LOADED"
	StatusFailed  Status = "FAILED"
)

type Visibility string

const (
	Hidden Visibility = "HIDDEN"
	Shown  Visibility = "SHOWN"
)

const DefaultSheet = "Sheet1"

// Session is a snapshot of the machine. Cursor is within [0, len(Cards)-1]
// whenever Cards is non-empty.
type Session struct {
	Status        Status        `json:"status"`
	SpreadsheetID string        `json:"spreadsheetId,omitempty"`
	Cards         []models.Card `json:"cards"`
	Cursor        int           `json:"cursor"`
	Visibility    Visibility    `json:"visibility"`
	// Current is the card under the cursor, nil when there are no cards.
	Current *models.Card `json:"current"`
}

// Runner executes load jobs off the caller's goroutine.
type Runner interface {
	Submit(worker.Job) error
}

// AuthSignal is told whenever an operation fails for lack of a session.
type AuthSignal interface {
	Require()
}

type Machine struct {
	repo   repository.SpreadsheetRepository
	runner Runner
	auth   AuthSignal
	sheet  string
	cols   Columns
	log    *logger.Logger

	mu      sync.Mutex
	session Session
	// settled is the last status that was not LOADING; pending counts loads
	// that have been submitted but not resolved.
	settled   Status
	pending   int
	listeners []func(Session)
}

type Option func(*Machine)

func WithSheetName(name string) Option {
	return func(m *Machine) { m.sheet = name }
}

func WithColumns(cols Columns) Option {
	return func(m *Machine) { m.cols = cols }
}

func WithLogger(l *logger.Logger) Option {
	return func(m *Machine) { m.log = l }
}

func NewMachine(repo repository.SpreadsheetRepository, runner Runner, auth AuthSignal, opts ...Option) *Machine {
	m := &Machine{
		repo:    repo,
		runner:  runner,
		auth:    auth,
		sheet:   DefaultSheet,
		cols:    DefaultColumns(),
		log:     logger.Default(),
		settled: StatusReady,
		session: Session{Status: StatusReady, Visibility: Hidden},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithPrefix("training")
	return m
}

// Subscribe registers fn to receive a snapshot after every change.
func (m *Machine) Subscribe(fn func(Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Open starts loading spreadsheetID and returns at once. The result lands in
// the session when the load job resolves. An empty id is ignored.
//
// Concurrent opens are not cancelled: whichever load resolves last wins.
func (m *Machine) Open(ctx context.Context, spreadsheetID string) {
	log := logger.FromContext(ctx).WithPrefix("training").WithField("spreadsheet_id", spreadsheetID)
	if spreadsheetID == "" {
		log.Debug("open ignored: no spreadsheet id")
		return
	}

	m.update(func(s *Session) bool {
		s.Status = StatusLoading
		m.pending++
		return true
	})

	job := worker.JobFunc{JobName: "load_spreadsheet", Fn: func(ctx context.Context) error {
		rows, err := m.repo.Get(ctx, spreadsheetID, m.sheet)
		m.resolve(ctx, spreadsheetID, rows, err)
		return err
	}}
	if err := m.runner.Submit(job); err != nil {
		log.Error("failed to submit load job: %v", err)
		m.update(func(s *Session) bool {
			m.pending--
			m.settle(s, StatusFailed)
			return true
		})
		return
	}
	log.Info("load submitted")
}

// resolve applies the outcome of a load.
func (m *Machine) resolve(ctx context.Context, spreadsheetID string, rows []models.Row, err error) {
	log := logger.FromContext(ctx).WithPrefix("training").WithField("spreadsheet_id", spreadsheetID)

	if errors.IsNotAuthorized(err) {
		log.Warn("load needs sign-in")
		m.update(func(s *Session) bool {
			m.pending--
			if m.pending > 0 {
				return false
			}
			s.Status = m.settled
			return true
		})
		m.auth.Require()
		return
	}

	if err != nil {
		log.Error("load failed: %v", err)
		m.update(func(s *Session) bool {
			m.pending--
			m.settle(s, StatusFailed)
			return true
		})
		return
	}

	cards := BuildCards(rows, m.cols)
	log.Info("loaded %d cards", len(cards))
	m.update(func(s *Session) bool {
		m.pending--
		*s = Session{
			SpreadsheetID: spreadsheetID,
			Cards:         cards,
			Cursor:        0,
			Visibility:    Hidden,
		}
		m.settle(s, StatusLoaded)
		return true
	})
}

// Advance moves to the next card and hides the answer. No-op on the last card.
func (m *Machine) Advance() {
	m.update(func(s *Session) bool {
		if len(s.Cards) == 0 || s.Cursor >= len(s.Cards)-1 {
			return false
		}
		s.Cursor++
		s.Visibility = Hidden
		return true
	})
}

// Retreat moves to the previous card and hides the answer. No-op on the first card.
func (m *Machine) Retreat() {
	m.update(func(s *Session) bool {
		if len(s.Cards) == 0 || s.Cursor <= 0 {
			return false
		}
		s.Cursor--
		s.Visibility = Hidden
		return true
	})
}

func (m *Machine) ToggleVisibility() {
	m.update(func(s *Session) bool {
		if s.Cards == nil {
			return false
		}
		if s.Visibility == Shown {
			s.Visibility = Hidden
		} else {
			s.Visibility = Shown
		}
		return true
	})
}

// Register adds spreadsheetID to the repository. The session is not touched.
func (m *Machine) Register(ctx context.Context, spreadsheetID string) (models.SpreadsheetRef, error) {
	log := logger.FromContext(ctx).WithPrefix("training").WithField("spreadsheet_id", spreadsheetID)

	ref, err := m.repo.Post(ctx, spreadsheetID)
	if err != nil {
		if errors.IsNotAuthorized(err) {
			log.Warn("register needs sign-in")
			m.auth.Require()
		} else {
			log.Error("register failed: %v", err)
		}
		return models.SpreadsheetRef{}, err
	}
	return ref, nil
}

// Clear returns the session to READY with no spreadsheet and no cards.
func (m *Machine) Clear() {
	m.update(func(s *Session) bool {
		*s = Session{Visibility: Hidden}
		m.settle(s, StatusReady)
		return true
	})
}

// Current returns the card under the cursor, if any.
func (m *Machine) Current() (models.Card, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	card := m.currentLocked()
	if card == nil {
		return models.Card{}, false
	}
	return *card, true
}

func (m *Machine) currentLocked() *models.Card {
	if m.session.Cursor < 0 || m.session.Cursor >= len(m.session.Cards) {
		return nil
	}
	card := m.session.Cards[m.session.Cursor]
	return &card
}

func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Session {
	s := m.session
	if s.Cards != nil {
		s.Cards = append([]models.Card{}, s.Cards...)
	}
	s.Current = m.currentLocked()
	return s
}

// settle sets a final status. While other loads are pending the session
// stays LOADING.
func (m *Machine) settle(s *Session, status Status) {
	m.settled = status
	if m.pending > 0 {
		s.Status = StatusLoading
		return
	}
	s.Status = status
}

// update applies fn under the lock and notifies listeners when fn reports a change.
func (m *Machine) update(fn func(*Session) bool) {
	m.mu.Lock()
	if !fn(&m.session) {
		m.mu.Unlock()
		return
	}
	snap := m.snapshotLocked()
	listeners := append([]func(Session){}, m.listeners...)
	m.mu.Unlock()

	m.log.Debug("session: status=%s cursor=%d visibility=%s", snap.Status, snap.Cursor, snap.Visibility)
	for _, fn := range listeners {
		fn(snap)
	}
}
