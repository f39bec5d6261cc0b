package sqlite_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/sentenceflash/internal/repository"
	"github.com/vytor/sentenceflash/internal/repository/sqlite"
	"github.com/vytor/sentenceflash/internal/testutil"
)

type CacheStoreSuite struct {
	suite.Suite
	db    *sqlx.DB
	store repository.CacheStore
}

func (s *CacheStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewCacheStore(s.db)
}

func (s *CacheStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CacheStoreSuite) TestGetMissingKey() {
	value, ok, err := s.store.Get(context.Background(), "SPREADSHEETS")
	s.Require().NoError(err)
	s.Assert().False(ok)
	s.Assert().Nil(value)
}

func (s *CacheStoreSuite) TestPutAndGet() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, "SPREADSHEETS", []byte(`[{"spreadsheetId":"a","title":"A"}]`)))

	value, ok, err := s.store.Get(ctx, "SPREADSHEETS")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().JSONEq(`[{"spreadsheetId":"a","title":"A"}]`, string(value))
}

func (s *CacheStoreSuite) TestPutOverwrites() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, "ROWS", []byte(`[1]`)))
	s.Require().NoError(s.store.Put(ctx, "ROWS", []byte(`[2]`)))

	value, ok, err := s.store.Get(ctx, "ROWS")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().Equal(`[2]`, string(value))

	var count int
	s.Require().NoError(s.db.Get(&count, `SELECT COUNT(*) FROM cache_entries`))
	s.Assert().Equal(1, count)
}

func (s *CacheStoreSuite) TestPutManyWritesEveryKey() {
	ctx := context.Background()

	s.Require().NoError(s.store.Put(ctx, "ROWS", []byte(`["old"]`)))
	s.Require().NoError(s.store.PutMany(ctx, map[string][]byte{
		"SPREADSHEETS": []byte(`[]`),
		"ROWS":         []byte(`["new"]`),
	}))

	sheets, ok, err := s.store.Get(ctx, "SPREADSHEETS")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().Equal(`[]`, string(sheets))

	rows, ok, err := s.store.Get(ctx, "ROWS")
	s.Require().NoError(err)
	s.Assert().True(ok)
	s.Assert().Equal(`["new"]`, string(rows))
}

func (s *CacheStoreSuite) TestStoresUnicodeVerbatim() {
	ctx := context.Background()
	payload := []byte(`[{"cells":["日本語テキスト","English text"]}]`)

	s.Require().NoError(s.store.Put(ctx, "ROWS", payload))

	value, _, err := s.store.Get(ctx, "ROWS")
	s.Require().NoError(err)
	s.Assert().Equal(payload, value)
}

func TestCacheStoreSuite(t *testing.T) {
	suite.Run(t, new(CacheStoreSuite))
}
