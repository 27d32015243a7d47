//go:build integration

package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/transfers/internal/domain"
	testutil "github.com/wms-platform/transfers/pkg/testing"
)

type ItemStatsRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *testutil.MongoDBContainer
	client    *mongo.Client
	db        *mongo.Database
	repo      *ItemStatsRepository
	ctx       context.Context
}

func (s *ItemStatsRepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := testutil.NewMongoDBContainer(s.ctx)
	s.Require().NoError(err)
	s.container = container

	client, err := container.GetClient(s.ctx)
	s.Require().NoError(err)
	s.client = client

	s.db = client.Database("transfers_test")
	s.repo = NewItemStatsRepository(s.db, DefaultItemStatsCollection, nil)
}

func (s *ItemStatsRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(s.ctx)
	}
	if s.container != nil {
		s.Require().NoError(s.container.Close(s.ctx))
	}
}

func (s *ItemStatsRepositoryIntegrationTestSuite) TearDownTest() {
	_ = s.db.Collection(DefaultItemStatsCollection).Drop(s.ctx)
}

func (s *ItemStatsRepositoryIntegrationTestSuite) TestFetchItemStats() {
	shipped, received := 5.0, 2.0
	s.Require().NoError(s.repo.Upsert(s.ctx, "TO1_01", domain.ItemStat{ShippedQty: &shipped, ReceivedQty: &received}))
	s.Require().NoError(s.repo.Upsert(s.ctx, "TO2_01", domain.ItemStat{ShippedQty: &shipped}))

	stats, err := s.repo.FetchItemStats(s.ctx, []string{"TO1_01", "TO1_02"})

	s.Require().NoError(err)
	s.Len(stats, 1)
	stat, ok := stats.Lookup("TO1_01")
	s.Require().True(ok)
	s.Equal(5.0, *stat.ShippedQty)
	s.Equal(2.0, *stat.ReceivedQty)
}

func (s *ItemStatsRepositoryIntegrationTestSuite) TestUpsertReplaces() {
	first, second := 1.0, 7.0
	s.Require().NoError(s.repo.Upsert(s.ctx, "TO1_01", domain.ItemStat{ShippedQty: &first, ReceivedQty: &first}))
	s.Require().NoError(s.repo.Upsert(s.ctx, "TO1_01", domain.ItemStat{ShippedQty: &second}))

	stats, err := s.repo.FetchItemStats(s.ctx, []string{"TO1_01"})

	s.Require().NoError(err)
	stat := stats["TO1_01"]
	s.Equal(7.0, *stat.ShippedQty)
	s.Nil(stat.ReceivedQty)
}

func TestItemStatsRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ItemStatsRepositoryIntegrationTestSuite))
}
