package battles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
)

type InMemoryRegistryTestSuite struct {
	suite.Suite
	repo *battles.InMemoryRepository
	ctx  context.Context
}

func TestInMemoryRegistrySuite(t *testing.T) {
	suite.Run(t, new(InMemoryRegistryTestSuite))
}

func (s *InMemoryRegistryTestSuite) SetupTest() {
	s.repo = battles.NewInMemory()
	s.ctx = context.Background()
}

func testBattle(id, challengerID, opponentID string, status entities.BattleStatus) *entities.Battle {
	return &entities.Battle{
		ID: id,
		Participants: [2]*entities.Participant{
			{PlayerID: challengerID},
			{PlayerID: opponentID},
		},
		Status: status,
	}
}

func (s *InMemoryRegistryTestSuite) TestSaveAndGet() {
	battle := testBattle("battle_1", "a", "b", entities.BattleStatusPending)

	_, err := s.repo.Save(s.ctx, battles.SaveInput{Battle: battle})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, battles.GetInput{BattleID: "battle_1"})
	s.Require().NoError(err)
	s.Assert().Same(battle, got.Battle)
}

func (s *InMemoryRegistryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, battles.GetInput{BattleID: "missing"})
	s.Require().Error(err)
	s.Assert().True(errors.IsNotFound(err))
}

func (s *InMemoryRegistryTestSuite) TestActiveForPlayer() {
	_, err := s.repo.Save(s.ctx, battles.SaveInput{
		Battle: testBattle("battle_1", "a", "b", entities.BattleStatusInProgress),
	})
	s.Require().NoError(err)
	_, err = s.repo.Save(s.ctx, battles.SaveInput{
		Battle: testBattle("battle_2", "c", "d", entities.BattleStatusComplete),
	})
	s.Require().NoError(err)

	out, err := s.repo.ActiveForPlayer(s.ctx, battles.ActiveForPlayerInput{PlayerID: "b"})
	s.Require().NoError(err)
	s.Require().NotNil(out.Battle)
	s.Assert().Equal("battle_1", out.Battle.ID)

	// Completed battles do not hold their players busy
	out, err = s.repo.ActiveForPlayer(s.ctx, battles.ActiveForPlayerInput{PlayerID: "c"})
	s.Require().NoError(err)
	s.Assert().Nil(out.Battle)

	out, err = s.repo.ActiveForPlayer(s.ctx, battles.ActiveForPlayerInput{PlayerID: "nobody"})
	s.Require().NoError(err)
	s.Assert().Nil(out.Battle)
}

func (s *InMemoryRegistryTestSuite) TestRemove() {
	_, err := s.repo.Save(s.ctx, battles.SaveInput{
		Battle: testBattle("battle_1", "a", "b", entities.BattleStatusComplete),
	})
	s.Require().NoError(err)

	_, err = s.repo.Remove(s.ctx, battles.RemoveInput{BattleID: "battle_1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, battles.GetInput{BattleID: "battle_1"})
	s.Assert().True(errors.IsNotFound(err))

	_, err = s.repo.Remove(s.ctx, battles.RemoveInput{BattleID: "battle_1"})
	s.Assert().True(errors.IsNotFound(err))
}
