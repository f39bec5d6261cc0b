package cached_test

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/models"
	"github.com/vytor/sentenceflash/internal/repository"
	"github.com/vytor/sentenceflash/internal/repository/cached"
	"github.com/vytor/sentenceflash/internal/repository/memory"
	"github.com/vytor/sentenceflash/internal/sheets"
	"github.com/vytor/sentenceflash/internal/testutil/mocks"
)

type SpreadsheetRepositorySuite struct {
	suite.Suite
	ctx    context.Context
	store  *memory.CacheStore
	client *mocks.MockSheetsClient
	repo   repository.SpreadsheetRepository
}

func (s *SpreadsheetRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewCacheStore()
	s.client = &mocks.MockSheetsClient{}
	s.repo = cached.NewSpreadsheetRepository(s.store, s.client)
}

func (s *SpreadsheetRepositorySuite) TearDownTest() {
	s.client.AssertExpectations(s.T())
}

func valueRange(rows ...[]models.Cell) *sheets.ValueRange {
	if rows == nil {
		rows = [][]models.Cell{}
	}
	return &sheets.ValueRange{Range: "Sheet1", MajorDimension: "ROWS", Values: rows}
}

func (s *SpreadsheetRepositorySuite) TestListEmpty() {
	refs := s.repo.List(s.ctx)
	s.Assert().NotNil(refs)
	s.Assert().Empty(refs)
}

func (s *SpreadsheetRepositorySuite) TestPostAndList() {
	s.client.On("Metadata", mock.Anything, "abc").Return(&sheets.Metadata{SpreadsheetID: "abc", Title: "Phrases"}, nil).Once()

	ref, err := s.repo.Post(s.ctx, "abc")
	s.Require().NoError(err)
	s.Assert().Equal(models.SpreadsheetRef{ID: "abc", Title: "Phrases"}, ref)

	s.Assert().Equal([]models.SpreadsheetRef{{ID: "abc", Title: "Phrases"}}, s.repo.List(s.ctx))
}

func (s *SpreadsheetRepositorySuite) TestPostWithoutTitle() {
	s.client.On("Metadata", mock.Anything, "abc").Return(&sheets.Metadata{SpreadsheetID: "abc"}, nil).Once()

	ref, err := s.repo.Post(s.ctx, "abc")
	s.Require().NoError(err)
	s.Assert().Equal("UNKNOWN", ref.Title)
}

func (s *SpreadsheetRepositorySuite) TestPostTwiceKeepsOneEntry() {
	s.client.On("Metadata", mock.Anything, "abc").Return(&sheets.Metadata{SpreadsheetID: "abc", Title: "First"}, nil).Once()
	s.client.On("Metadata", mock.Anything, "abc").Return(&sheets.Metadata{SpreadsheetID: "abc", Title: "Renamed"}, nil).Once()

	_, err := s.repo.Post(s.ctx, "abc")
	s.Require().NoError(err)
	ref, err := s.repo.Post(s.ctx, "abc")
	s.Require().NoError(err)

	s.Assert().Equal("First", ref.Title)
	s.Assert().Len(s.repo.List(s.ctx), 1)
}

func (s *SpreadsheetRepositorySuite) TestPostNotAuthorized() {
	s.client.On("Metadata", mock.Anything, "abc").Return(nil, errors.NewNotAuthorizedError(nil)).Once()

	_, err := s.repo.Post(s.ctx, "abc")
	s.Assert().True(errors.IsNotAuthorized(err))
	s.Assert().Empty(s.repo.List(s.ctx))
}

func (s *SpreadsheetRepositorySuite) TestGetFetchesOnceThenServesCache() {
	s.client.On("Values", mock.Anything, "abc", "Sheet1").Return(valueRange(
		[]models.Cell{models.TextCell("section"), models.TextCell("#")},
		[]models.Cell{models.NumberCell(1), models.NumberCell(2)},
	), nil).Once()

	first, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Assert().Equal(0, first[0].RowIndex)
	s.Assert().Equal(1, first[1].RowIndex)
	s.Assert().Equal("abc", first[1].SpreadsheetID)

	second, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)
	s.Assert().Equal(first, second)
}

func (s *SpreadsheetRepositorySuite) TestGetKeepsOtherSpreadsheets() {
	s.client.On("Values", mock.Anything, "a", "Sheet1").Return(valueRange([]models.Cell{models.TextCell("a0")}), nil).Once()
	s.client.On("Values", mock.Anything, "b", "Sheet1").Return(valueRange([]models.Cell{models.TextCell("b0")}), nil).Once()

	_, err := s.repo.Get(s.ctx, "a", "Sheet1")
	s.Require().NoError(err)
	_, err = s.repo.Get(s.ctx, "b", "Sheet1")
	s.Require().NoError(err)

	rows, err := s.repo.Get(s.ctx, "a", "Sheet1")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Assert().Equal("a0", rows[0].Cells[0].String())
}

func (s *SpreadsheetRepositorySuite) TestGetWithoutValuesField() {
	raw := []byte(`{"range":"Sheet1!A1:Z1000"}`)
	s.client.On("Values", mock.Anything, "abc", "Sheet1").Return(&sheets.ValueRange{Raw: raw}, nil).Once()

	_, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().True(errors.IsRemoteError(err))

	var appErr *errors.AppError
	s.Require().True(stderrors.As(err, &appErr))
	s.Assert().Equal(raw, appErr.Payload)

	_, ok, _ := s.store.Get(s.ctx, cached.RowsKey)
	s.Assert().False(ok, "nothing should be cached")
}

func (s *SpreadsheetRepositorySuite) TestGetNotAuthorized() {
	s.client.On("Values", mock.Anything, "abc", "Sheet1").Return(nil, errors.NewNotAuthorizedError(nil)).Once()

	_, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Assert().True(errors.IsNotAuthorized(err))
}

func (s *SpreadsheetRepositorySuite) TestGetWrapsUntypedFailures() {
	s.client.On("Values", mock.Anything, "abc", "Sheet1").Return(nil, stderrors.New("connection reset")).Once()

	_, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Assert().True(errors.IsRemoteError(err))
}

func (s *SpreadsheetRepositorySuite) TestDeleteRemovesRefAndRows() {
	s.client.On("Metadata", mock.Anything, "abc").Return(&sheets.Metadata{Title: "Phrases"}, nil).Once()
	s.client.On("Metadata", mock.Anything, "def").Return(&sheets.Metadata{Title: "Other"}, nil).Once()
	s.client.On("Values", mock.Anything, "abc", "Sheet1").Return(valueRange([]models.Cell{models.TextCell("old")}), nil).Once()

	_, err := s.repo.Post(s.ctx, "abc")
	s.Require().NoError(err)
	_, err = s.repo.Post(s.ctx, "def")
	s.Require().NoError(err)
	_, err = s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(s.ctx, "abc"))
	s.Assert().Equal([]models.SpreadsheetRef{{ID: "def", Title: "Other"}}, s.repo.List(s.ctx))

	s.client.On("Values", mock.Anything, "abc", "Sheet1").Return(valueRange([]models.Cell{models.TextCell("new")}), nil).Once()
	rows, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Assert().Equal("new", rows[0].Cells[0].String())
}

func (s *SpreadsheetRepositorySuite) TestDeleteUnknownIsNoop() {
	s.Require().NoError(s.repo.Delete(s.ctx, "missing"))
	s.Assert().Empty(s.repo.List(s.ctx))
}

func (s *SpreadsheetRepositorySuite) TestMalformedCacheTreatedAsEmpty() {
	s.Require().NoError(s.store.Put(s.ctx, cached.SpreadsheetsKey, []byte(`{not json`)))
	s.Require().NoError(s.store.Put(s.ctx, cached.RowsKey, []byte(`{"spreadsheetId":"abc"}`)))

	s.Assert().Empty(s.repo.List(s.ctx))

	s.client.On("Values", mock.Anything, "abc", "Sheet1").Return(valueRange([]models.Cell{models.TextCell("x")}), nil).Once()
	rows, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)
	s.Assert().Len(rows, 1)
}

func (s *SpreadsheetRepositorySuite) TestReadsExistingCacheLayout() {
	s.Require().NoError(s.store.Put(s.ctx, cached.SpreadsheetsKey, []byte(`[{"spreadsheetId":"abc","title":"Phrases"}]`)))
	s.Require().NoError(s.store.Put(s.ctx, cached.RowsKey, []byte(
		`[{"spreadsheetId":"abc","rowIndex":1,"cells":[1,"text",null]},{"spreadsheetId":"abc","rowIndex":0,"cells":["section"]}]`,
	)))

	s.Assert().Equal([]models.SpreadsheetRef{{ID: "abc", Title: "Phrases"}}, s.repo.List(s.ctx))

	rows, err := s.repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Assert().Equal(0, rows[0].RowIndex)
	s.Assert().Equal(1, rows[1].Cells[0].Int())
	s.Assert().True(rows[1].Cells[2].IsEmpty())
}

// barrierClient holds every Values call until `waitFor` calls are in flight.
type barrierClient struct {
	arrived sync.WaitGroup
	release chan struct{}
	calls   atomic.Int32
}

func newBarrierClient(waitFor int) *barrierClient {
	c := &barrierClient{release: make(chan struct{})}
	c.arrived.Add(waitFor)
	return c
}

func (c *barrierClient) Metadata(context.Context, string) (*sheets.Metadata, error) {
	return &sheets.Metadata{}, nil
}

func (c *barrierClient) Values(ctx context.Context, spreadsheetID, sheetName string) (*sheets.ValueRange, error) {
	c.calls.Add(1)
	c.arrived.Done()
	<-c.release
	return valueRange(
		[]models.Cell{models.TextCell("section")},
		[]models.Cell{models.NumberCell(1)},
	), nil
}

// waitAndRelease lets the held calls return once all of them have arrived.
func (c *barrierClient) waitAndRelease() {
	c.arrived.Wait()
	close(c.release)
}

func (s *SpreadsheetRepositorySuite) TestConcurrentGetsCacheRowsOnce() {
	client := newBarrierClient(2)
	repo := cached.NewSpreadsheetRepository(s.store, client)

	var wg sync.WaitGroup
	results := make([][]models.Row, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rows, err := repo.Get(s.ctx, "abc", "Sheet1")
			s.Assert().NoError(err)
			results[i] = rows
		}(i)
	}
	client.waitAndRelease()
	wg.Wait()

	for _, rows := range results {
		s.Require().Len(rows, 2)
		s.Assert().Equal(0, rows[0].RowIndex)
		s.Assert().Equal(1, rows[1].RowIndex)
	}

	rows, err := repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Assert().Equal(0, rows[0].RowIndex)
	s.Assert().Equal(1, rows[1].RowIndex)
	s.Assert().Equal(int32(2), client.calls.Load())
}

// A Delete that lands while a Get is fetching does not stop the Get from
// caching its rows afterwards. The ordering of the two is not guaranteed.
func (s *SpreadsheetRepositorySuite) TestDeleteDuringFetchIsUnordered() {
	client := newBarrierClient(1)
	repo := cached.NewSpreadsheetRepository(s.store, client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := repo.Get(s.ctx, "abc", "Sheet1")
		s.Assert().NoError(err)
	}()

	client.arrived.Wait()
	s.Require().NoError(repo.Delete(s.ctx, "abc"))
	close(client.release)
	<-done

	rows, err := repo.Get(s.ctx, "abc", "Sheet1")
	s.Require().NoError(err)
	s.Assert().Len(rows, 2, "rows fetched before the delete are cached after it")
	s.Assert().Equal(int32(1), client.calls.Load())
}

func TestSpreadsheetRepositorySuite(t *testing.T) {
	suite.Run(t, new(SpreadsheetRepositorySuite))
}
