package battle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/duelhaven/cardbattle-api/internal/catalog"
	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/player"
	"github.com/duelhaven/cardbattle-api/internal/pkg/clock"
	"github.com/duelhaven/cardbattle-api/internal/pkg/idgen"
	"github.com/duelhaven/cardbattle-api/internal/pkg/keymutex"
	"github.com/duelhaven/cardbattle-api/internal/pkg/rng"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
	"github.com/duelhaven/cardbattle-api/internal/repositories/players"
	playersmock "github.com/duelhaven/cardbattle-api/internal/repositories/players/mock"
)

type captureNotifier struct {
	outcomes []*battle.Outcome
}

func (n *captureNotifier) BattleCompleted(_ context.Context, outcome *battle.Outcome) {
	n.outcomes = append(n.outcomes, outcome)
}

type SettlementTestSuite struct {
	suite.Suite
	service    battle.Service
	playerRepo *players.InMemoryRepository
	registry   *battles.InMemoryRepository
	notifier   *captureNotifier
	ctx        context.Context
}

func TestSettlementSuite(t *testing.T) {
	suite.Run(t, new(SettlementTestSuite))
}

func (s *SettlementTestSuite) SetupTest() {
	cat, err := catalog.Parse([]byte(testCatalogJSON), catalog.FormatJSON, rng.NewSeeded(1))
	s.Require().NoError(err)

	s.playerRepo = players.NewInMemory()
	s.registry = battles.NewInMemory()
	s.notifier = &captureNotifier{}

	service, err := battle.NewOrchestrator(&battle.Config{
		PlayerRepo:  s.playerRepo,
		Registry:    s.registry,
		Catalog:     cat,
		IDGenerator: idgen.NewSequential("battle"),
		Clock:       clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		RNG:         rng.NewSeeded(1),
		Notifier:    s.notifier,
	})
	s.Require().NoError(err)
	s.service = service
	s.ctx = context.Background()
}

func (s *SettlementTestSuite) seedPlayer(userID string, cards ...string) {
	player := entities.NewPlayer(userID, userID)
	for _, cardID := range cards {
		player.AddCard(cardID)
	}
	_, err := s.playerRepo.Save(s.ctx, players.SaveInput{Player: player})
	s.Require().NoError(err)
}

// runBattle creates and runs a battle between the seeded players, returning
// its id
func (s *SettlementTestSuite) runBattle(challengerID, opponentID string) string {
	created, err := s.service.Create(s.ctx, &battle.CreateInput{
		ChallengerID: challengerID,
		OpponentID:   opponentID,
	})
	s.Require().NoError(err)

	_, err = s.service.Run(s.ctx, &battle.RunInput{BattleID: created.Battle.ID})
	s.Require().NoError(err)

	return created.Battle.ID
}

func (s *SettlementTestSuite) getPlayer(userID string) *entities.Player {
	got, err := s.playerRepo.Get(s.ctx, players.GetInput{UserID: userID})
	s.Require().NoError(err)
	return got.Player
}

func (s *SettlementTestSuite) TestSettleAppliesStakes() {
	s.seedPlayer("a", "ember-wolf")
	s.seedPlayer("b", "tide-warden")
	battleID := s.runBattle("a", "b")

	out, err := s.service.Settle(s.ctx, &battle.SettleInput{BattleID: battleID})
	s.Require().NoError(err)
	s.Require().True(out.Applied)
	s.Require().NotNil(out.Outcome)

	s.Assert().Equal("a", out.Outcome.WinnerID)
	s.Assert().Equal("b", out.Outcome.LoserID)
	s.Assert().Equal(battle.DefaultTokenReward, out.Outcome.TokensAwarded)
	s.Assert().Equal("tide-warden", out.Outcome.StolenCardID)

	winner := s.getPlayer("a")
	s.Assert().Equal(entities.StartingTokens+battle.DefaultTokenReward, winner.BattleTokens)
	s.Assert().Equal(int32(1), winner.BattleStats.Wins)
	s.Assert().Equal(int32(1), winner.BattleStats.TotalBattles)
	s.Assert().Equal(battle.DefaultXPReward, winner.BattleStats.TotalExperience)
	s.Assert().ElementsMatch([]string{"ember-wolf", "tide-warden"}, winner.Collection)

	loser := s.getPlayer("b")
	s.Assert().Equal(entities.StartingTokens, loser.BattleTokens)
	s.Assert().Equal(int32(1), loser.BattleStats.Losses)
	s.Assert().Equal(int32(1), loser.BattleStats.TotalBattles)
	s.Assert().Empty(loser.Collection)

	// the settled battle leaves the registry
	_, err = s.registry.Get(s.ctx, battles.GetInput{BattleID: battleID})
	s.Require().Error(err)
	s.Assert().True(errors.IsNotFound(err))

	s.Require().Len(s.notifier.outcomes, 1)
	s.Assert().Equal(battleID, s.notifier.outcomes[0].BattleID)
}

func (s *SettlementTestSuite) TestSettleIsExactlyOnce() {
	s.seedPlayer("a", "ember-wolf")
	s.seedPlayer("b", "tide-warden")
	battleID := s.runBattle("a", "b")

	first, err := s.service.Settle(s.ctx, &battle.SettleInput{BattleID: battleID})
	s.Require().NoError(err)
	s.Assert().True(first.Applied)

	second, err := s.service.Settle(s.ctx, &battle.SettleInput{BattleID: battleID})
	s.Require().NoError(err)
	s.Assert().False(second.Applied)
	s.Assert().Nil(second.Outcome)

	// stakes applied once
	winner := s.getPlayer("a")
	s.Assert().Equal(entities.StartingTokens+battle.DefaultTokenReward, winner.BattleTokens)
	s.Assert().Equal(int32(1), winner.BattleStats.Wins)
	s.Assert().Len(s.notifier.outcomes, 1)
}

func (s *SettlementTestSuite) TestSettleEmptyLoserCollection() {
	// the loser's deck references a card no longer in their collection, so
	// there is nothing to steal
	s.seedPlayer("a", "ember-wolf")
	loser := entities.NewPlayer("b", "b")
	loser.CurrentDeck = []string{"tide-warden"}
	_, err := s.playerRepo.Save(s.ctx, players.SaveInput{Player: loser})
	s.Require().NoError(err)

	battleID := s.runBattle("a", "b")

	out, err := s.service.Settle(s.ctx, &battle.SettleInput{BattleID: battleID})
	s.Require().NoError(err)
	s.Require().True(out.Applied)
	s.Assert().Empty(out.Outcome.StolenCardID)

	winner := s.getPlayer("a")
	s.Assert().Equal([]string{"ember-wolf"}, winner.Collection)
}

func (s *SettlementTestSuite) TestSettleStolenCardLeavesDeck() {
	s.seedPlayer("a", "ember-wolf")
	loser := entities.NewPlayer("b", "b")
	loser.AddCard("tide-warden")
	loser.CurrentDeck = []string{"tide-warden"}
	_, err := s.playerRepo.Save(s.ctx, players.SaveInput{Player: loser})
	s.Require().NoError(err)

	battleID := s.runBattle("a", "b")

	out, err := s.service.Settle(s.ctx, &battle.SettleInput{BattleID: battleID})
	s.Require().NoError(err)
	s.Assert().Equal("tide-warden", out.Outcome.StolenCardID)

	after := s.getPlayer("b")
	s.Assert().Empty(after.Collection)
	s.Assert().Empty(after.CurrentDeck)
}

func (s *SettlementTestSuite) TestSettleRejectsPendingBattle() {
	s.seedPlayer("a", "ember-wolf")
	s.seedPlayer("b", "tide-warden")
	created, err := s.service.Create(s.ctx, &battle.CreateInput{ChallengerID: "a", OpponentID: "b"})
	s.Require().NoError(err)

	_, err = s.service.Settle(s.ctx, &battle.SettleInput{BattleID: created.Battle.ID})
	s.Require().Error(err)
	s.Assert().True(errors.IsFailedPrecondition(err))

	// the failed attempt releases the claim; settling after the run succeeds
	_, err = s.service.Run(s.ctx, &battle.RunInput{BattleID: created.Battle.ID})
	s.Require().NoError(err)

	out, err := s.service.Settle(s.ctx, &battle.SettleInput{BattleID: created.Battle.ID})
	s.Require().NoError(err)
	s.Assert().True(out.Applied)
}

func (s *SettlementTestSuite) TestSettleUnknownBattle() {
	_, err := s.service.Settle(s.ctx, &battle.SettleInput{BattleID: "missing"})
	s.Require().Error(err)
	s.Assert().True(errors.IsNotFound(err))
}

// pausingPlayerRepo wraps a repository and, once armed, parks the next Get
// for the given user between the read and its return, so a test can schedule
// another writer into the middle of a read-modify-write cycle.
type pausingPlayerRepo struct {
	players.Repository

	mu      sync.Mutex
	holdFor string
	entered chan struct{}
	release chan struct{}
}

func (r *pausingPlayerRepo) arm(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holdFor = userID
	r.entered = make(chan struct{})
	r.release = make(chan struct{})
}

func (r *pausingPlayerRepo) Get(ctx context.Context, input players.GetInput) (*players.GetOutput, error) {
	out, err := r.Repository.Get(ctx, input)

	r.mu.Lock()
	hold := r.holdFor != "" && input.UserID == r.holdFor
	if hold {
		r.holdFor = ""
	}
	entered, release := r.entered, r.release
	r.mu.Unlock()

	if hold {
		close(entered)
		<-release
	}
	return out, err
}

// TestSettleSerializesWithDailyClaim runs a settlement and a daily claim for
// the same player concurrently, with the settlement parked between loading
// the winner and saving them. Both services share one player lock map, so the
// claim must wait and both the token award and the stipend survive.
func TestSettleSerializesWithDailyClaim(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalogJSON), catalog.FormatJSON, rng.NewSeeded(1))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	inner := players.NewInMemory()
	repo := &pausingPlayerRepo{Repository: inner}
	registry := battles.NewInMemory()
	locks := keymutex.New()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	battleService, err := battle.NewOrchestrator(&battle.Config{
		PlayerRepo:  repo,
		Registry:    registry,
		Catalog:     cat,
		IDGenerator: idgen.NewSequential("battle"),
		Clock:       clk,
		RNG:         rng.NewSeeded(1),
		PlayerLocks: locks,
	})
	if err != nil {
		t.Fatalf("new battle orchestrator: %v", err)
	}

	profileService, err := player.NewOrchestrator(&player.Config{
		PlayerRepo:  repo,
		Catalog:     cat,
		Clock:       clk,
		PlayerLocks: locks,
	})
	if err != nil {
		t.Fatalf("new profile orchestrator: %v", err)
	}

	ctx := context.Background()
	for userID, cardID := range map[string]string{"a": "ember-wolf", "b": "tide-warden"} {
		p := entities.NewPlayer(userID, userID)
		p.AddCard(cardID)
		if _, err := inner.Save(ctx, players.SaveInput{Player: p}); err != nil {
			t.Fatalf("seed %s: %v", userID, err)
		}
	}

	created, err := battleService.Create(ctx, &battle.CreateInput{ChallengerID: "a", OpponentID: "b"})
	if err != nil {
		t.Fatalf("create battle: %v", err)
	}
	if _, err := battleService.Run(ctx, &battle.RunInput{BattleID: created.Battle.ID}); err != nil {
		t.Fatalf("run battle: %v", err)
	}

	// park the settlement right after it loads the winner
	repo.arm("a")

	settleDone := make(chan error, 1)
	go func() {
		_, err := battleService.Settle(ctx, &battle.SettleInput{BattleID: created.Battle.ID})
		settleDone <- err
	}()
	<-repo.entered

	claimDone := make(chan error, 1)
	go func() {
		_, err := profileService.ClaimDaily(ctx, &player.ClaimDailyInput{UserID: "a"})
		claimDone <- err
	}()

	// give the claim time to reach the lock, then let the settlement finish
	time.Sleep(50 * time.Millisecond)
	close(repo.release)

	if err := <-settleDone; err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := <-claimDone; err != nil {
		t.Fatalf("claim daily: %v", err)
	}

	got, err := inner.Get(ctx, players.GetInput{UserID: "a"})
	if err != nil {
		t.Fatalf("get winner: %v", err)
	}
	wantBalance := entities.StartingTokens + battle.DefaultTokenReward + player.DefaultDailyTokens
	if got.Player.BattleTokens != wantBalance {
		t.Errorf("balance = %d, want %d (a lost update dropped one of the writes)",
			got.Player.BattleTokens, wantBalance)
	}
	if got.Player.LastDailyClaim == 0 {
		t.Error("daily claim timestamp was overwritten")
	}
	if got.Player.BattleStats.Wins != 1 {
		t.Errorf("wins = %d, want 1", got.Player.BattleStats.Wins)
	}
}

// TestSettleRollsBackWinnerOnLoserSaveFailure drives settlement against a
// mocked player repo whose loser save fails, and checks the winner is
// restored to the pre-settlement record.
func TestSettleRollsBackWinnerOnLoserSaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cat, err := catalog.Parse([]byte(testCatalogJSON), catalog.FormatJSON, rng.NewSeeded(1))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}

	registry := battles.NewInMemory()
	mockRepo := playersmock.NewMockRepository(ctrl)

	service, err := battle.NewOrchestrator(&battle.Config{
		PlayerRepo:  mockRepo,
		Registry:    registry,
		Catalog:     cat,
		IDGenerator: idgen.NewSequential("battle"),
		Clock:       clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		RNG:         rng.NewSeeded(1),
	})
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	ctx := context.Background()

	completed := &entities.Battle{
		ID:     "battle_1",
		Status: entities.BattleStatusComplete,
		Participants: [2]*entities.Participant{
			{PlayerID: "a", Username: "a"},
			{PlayerID: "b", Username: "b"},
		},
		WinnerID: "a",
		LoserID:  "b",
	}
	if _, err := registry.Save(ctx, battles.SaveInput{Battle: completed}); err != nil {
		t.Fatalf("save battle: %v", err)
	}

	winner := entities.NewPlayer("a", "a")
	winner.AddCard("ember-wolf")
	loser := entities.NewPlayer("b", "b")
	loser.AddCard("tide-warden")

	mockRepo.EXPECT().
		Get(gomock.Any(), players.GetInput{UserID: "a"}).
		Return(&players.GetOutput{Player: winner.Clone()}, nil)
	mockRepo.EXPECT().
		Get(gomock.Any(), players.GetInput{UserID: "b"}).
		Return(&players.GetOutput{Player: loser.Clone()}, nil)

	var savedWinner, rolledBack *entities.Player
	gomock.InOrder(
		mockRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, input players.SaveInput) (*players.SaveOutput, error) {
				savedWinner = input.Player
				return &players.SaveOutput{}, nil
			}),
		mockRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			Return(nil, errors.Unavailable("redis down")),
		mockRepo.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, input players.SaveInput) (*players.SaveOutput, error) {
				rolledBack = input.Player
				return &players.SaveOutput{}, nil
			}),
	)

	_, err = service.Settle(ctx, &battle.SettleInput{BattleID: "battle_1"})
	if err == nil {
		t.Fatal("expected settle to fail")
	}

	if savedWinner == nil || savedWinner.UserID != "a" {
		t.Fatalf("expected first save to be the winner, got %+v", savedWinner)
	}
	if rolledBack == nil {
		t.Fatal("expected a winner rollback save")
	}
	if rolledBack.BattleTokens != entities.StartingTokens {
		t.Errorf("rollback tokens = %d, want %d", rolledBack.BattleTokens, entities.StartingTokens)
	}
	if rolledBack.BattleStats.Wins != 0 {
		t.Errorf("rollback wins = %d, want 0", rolledBack.BattleStats.Wins)
	}
	if len(rolledBack.Collection) != 1 || rolledBack.Collection[0] != "ember-wolf" {
		t.Errorf("rollback collection = %v, want [ember-wolf]", rolledBack.Collection)
	}

	// the claim was released, so the battle is still settleable
	if _, err := registry.Get(ctx, battles.GetInput{BattleID: "battle_1"}); err != nil {
		t.Fatalf("battle should remain in registry: %v", err)
	}
}
