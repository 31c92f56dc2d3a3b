package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/duelhaven/cardbattle-api/internal/catalog"
	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/handlers/httpapi"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
	battlemock "github.com/duelhaven/cardbattle-api/internal/orchestrators/battle/mock"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/challenge"
	challengemock "github.com/duelhaven/cardbattle-api/internal/orchestrators/challenge/mock"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/player"
	playermock "github.com/duelhaven/cardbattle-api/internal/orchestrators/player/mock"
	"github.com/duelhaven/cardbattle-api/internal/pkg/rng"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
)

const testCatalogJSON = `{
	"cards": [
		{"id": "ember-wolf", "name": "Ember Wolf", "stats": {"attack": 10, "defense": 2, "health": 30}, "rarity": "Common", "element": "Fire"},
		{"id": "tide-warden", "name": "Tide Warden", "stats": {"attack": 6, "defense": 1, "health": 40}, "rarity": "Rare", "element": "Water"}
	]
}`

// stubArchiver serves a fixed archived record
type stubArchiver struct {
	record *battles.ArchivedBattle
}

func (a *stubArchiver) Archive(context.Context, *entities.Battle) error {
	return nil
}

func (a *stubArchiver) GetArchived(_ context.Context, battleID string) (*battles.ArchivedBattle, error) {
	if a.record == nil || a.record.ID != battleID {
		return nil, errors.NotFound("archived battle not found")
	}
	return a.record, nil
}

type HandlerTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	players    *playermock.MockService
	challenges *challengemock.MockService
	battles    *battlemock.MockService
	archiver   *stubArchiver
	router     *gin.Engine
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.ctrl = gomock.NewController(s.T())
	s.players = playermock.NewMockService(s.ctrl)
	s.challenges = challengemock.NewMockService(s.ctrl)
	s.battles = battlemock.NewMockService(s.ctrl)
	s.archiver = &stubArchiver{}

	cat, err := catalog.Parse([]byte(testCatalogJSON), catalog.FormatJSON, rng.NewSeeded(1))
	s.Require().NoError(err)

	handler, err := httpapi.NewHandler(&httpapi.Config{
		Players:    s.players,
		Challenges: s.challenges,
		Battles:    s.battles,
		Catalog:    cat,
		Archive:    s.archiver,
	})
	s.Require().NoError(err)

	s.router = gin.New()
	handler.RegisterRoutes(s.router)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *HandlerTestSuite) TestHealthz() {
	w := s.request(http.MethodGet, "/healthz", "")
	s.Assert().Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestCreatePlayer() {
	s.players.EXPECT().
		GetOrCreate(gomock.Any(), &player.GetOrCreateInput{UserID: "user_1", Username: "alice"}).
		Return(&player.GetOrCreateOutput{
			Player:  entities.NewPlayer("user_1", "alice"),
			Created: true,
		}, nil)

	w := s.request(http.MethodPost, "/v1/players", `{"user_id": "user_1", "username": "alice"}`)
	s.Require().Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	s.Assert().Equal("user_1", body["user_id"])
	s.Assert().EqualValues(entities.StartingTokens, body["battle_tokens"])
}

func (s *HandlerTestSuite) TestCreatePlayerExisting() {
	s.players.EXPECT().
		GetOrCreate(gomock.Any(), gomock.Any()).
		Return(&player.GetOrCreateOutput{Player: entities.NewPlayer("user_1", "alice")}, nil)

	w := s.request(http.MethodPost, "/v1/players", `{"user_id": "user_1", "username": "alice"}`)
	s.Assert().Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestCreatePlayerMalformedBody() {
	w := s.request(http.MethodPost, "/v1/players", `{"user_id": `)
	s.Require().Equal(http.StatusBadRequest, w.Code)

	body := s.decode(w)
	errBody := body["error"].(map[string]interface{})
	s.Assert().Equal("INVALID_ARGUMENT", errBody["code"])
}

func (s *HandlerTestSuite) TestGetPlayerNotFound() {
	s.players.EXPECT().
		Get(gomock.Any(), &player.GetInput{UserID: "missing"}).
		Return(nil, errors.NotFound("player not found"))

	w := s.request(http.MethodGet, "/v1/players/missing", "")
	s.Require().Equal(http.StatusNotFound, w.Code)

	body := s.decode(w)
	errBody := body["error"].(map[string]interface{})
	s.Assert().Equal("NOT_FOUND", errBody["code"])
	s.Assert().Equal("player not found", errBody["message"])
}

func (s *HandlerTestSuite) TestGrantStarter() {
	granted := entities.NewPlayer("user_1", "alice")
	granted.AddCard("ember-wolf")

	s.players.EXPECT().
		GrantStarterCards(gomock.Any(), &player.GrantStarterInput{UserID: "user_1"}).
		Return(&player.GrantStarterOutput{
			Player: granted,
			Cards:  []*entities.Card{{ID: "ember-wolf", Name: "Ember Wolf"}},
		}, nil)

	w := s.request(http.MethodPost, "/v1/players/user_1/starter", "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	cards := body["cards"].([]interface{})
	s.Require().Len(cards, 1)
}

func (s *HandlerTestSuite) TestClaimDailyCooldownStatus() {
	s.players.EXPECT().
		ClaimDaily(gomock.Any(), &player.ClaimDailyInput{UserID: "user_1"}).
		Return(nil, errors.FailedPrecondition("daily tokens already claimed").
			WithMeta("retry_after_seconds", int64(3600)))

	w := s.request(http.MethodPost, "/v1/players/user_1/daily", "")
	s.Require().Equal(http.StatusPreconditionFailed, w.Code)

	body := s.decode(w)
	errBody := body["error"].(map[string]interface{})
	meta := errBody["meta"].(map[string]interface{})
	s.Assert().EqualValues(3600, meta["retry_after_seconds"])
}

func (s *HandlerTestSuite) TestSetDeck() {
	updated := entities.NewPlayer("user_1", "alice")
	updated.AddCard("ember-wolf")
	updated.CurrentDeck = []string{"ember-wolf"}

	s.players.EXPECT().
		SetDeck(gomock.Any(), &player.SetDeckInput{UserID: "user_1", CardIDs: []string{"ember-wolf"}}).
		Return(&player.SetDeckOutput{Player: updated}, nil)

	w := s.request(http.MethodPut, "/v1/players/user_1/deck", `{"card_ids": ["ember-wolf"]}`)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().Equal([]interface{}{"ember-wolf"}, body["current_deck"])
}

func (s *HandlerTestSuite) TestPurchasePack() {
	s.players.EXPECT().
		PurchasePack(gomock.Any(), &player.PurchasePackInput{UserID: "user_1", Rarity: "Rare"}).
		Return(&player.PurchasePackOutput{
			Player:  entities.NewPlayer("user_1", "alice"),
			Cards:   []*entities.Card{{ID: "tide-warden"}},
			Balance: 100,
		}, nil)

	w := s.request(http.MethodPost, "/v1/players/user_1/packs", `{"rarity": "Rare"}`)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().EqualValues(100, body["balance"])
}

func (s *HandlerTestSuite) TestGetCard() {
	w := s.request(http.MethodGet, "/v1/cards/ember-wolf", "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().Equal("Ember Wolf", body["name"])
	s.Assert().EqualValues(10, body["attack"])
}

func (s *HandlerTestSuite) TestGetCardNotFound() {
	w := s.request(http.MethodGet, "/v1/cards/missing", "")
	s.Assert().Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestListCards() {
	w := s.request(http.MethodGet, "/v1/cards", "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().Len(body["cards"], 2)
}

func (s *HandlerTestSuite) TestListCardsByRarity() {
	w := s.request(http.MethodGet, "/v1/cards?rarity=Rare", "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	cards := body["cards"].([]interface{})
	s.Require().Len(cards, 1)
	card := cards[0].(map[string]interface{})
	s.Assert().Equal("tide-warden", card["id"])
}

func (s *HandlerTestSuite) TestIssueChallenge() {
	s.challenges.EXPECT().
		Issue(gomock.Any(), &challenge.IssueInput{ChallengerID: "a", TargetID: "b", Ref: "msg-1"}).
		Return(&challenge.IssueOutput{Challenge: &entities.Challenge{
			ID:           "challenge_1",
			ChallengerID: "a",
			TargetID:     "b",
			Ref:          "msg-1",
			Status:       entities.ChallengeStatusPending,
		}}, nil)

	w := s.request(http.MethodPost, "/v1/challenges",
		`{"challenger_id": "a", "target_id": "b", "ref": "msg-1"}`)
	s.Require().Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	s.Assert().Equal("challenge_1", body["id"])
	s.Assert().Equal("PENDING", body["status"])
}

func (s *HandlerTestSuite) TestIssueChallengeConflict() {
	s.challenges.EXPECT().
		Issue(gomock.Any(), gomock.Any()).
		Return(nil, errors.AlreadyExists("target already has a pending challenge"))

	w := s.request(http.MethodPost, "/v1/challenges", `{"challenger_id": "a", "target_id": "b"}`)
	s.Assert().Equal(http.StatusConflict, w.Code)
}

func (s *HandlerTestSuite) TestRespondChallengeAccept() {
	s.challenges.EXPECT().
		Respond(gomock.Any(), &challenge.RespondInput{TargetID: "b", Accept: true}).
		Return(&challenge.RespondOutput{
			Applied:   true,
			Challenge: &entities.Challenge{ID: "challenge_1", Status: entities.ChallengeStatusAccepted},
			Outcome: &battle.Outcome{
				BattleID:      "battle_1",
				WinnerID:      "a",
				LoserID:       "b",
				StolenCardID:  "tide-warden",
				TokensAwarded: 50,
			},
		}, nil)

	w := s.request(http.MethodPost, "/v1/challenges/b/respond", `{"accept": true}`)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().Equal(true, body["applied"])
	outcome := body["outcome"].(map[string]interface{})
	s.Assert().Equal("a", outcome["winner_id"])
	s.Assert().Equal("tide-warden", outcome["stolen_card_id"])
}

func (s *HandlerTestSuite) TestRespondChallengeNoOp() {
	s.challenges.EXPECT().
		Respond(gomock.Any(), &challenge.RespondInput{TargetID: "b", Accept: false}).
		Return(&challenge.RespondOutput{Applied: false}, nil)

	w := s.request(http.MethodPost, "/v1/challenges/b/respond", `{"accept": false}`)
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().Equal(false, body["applied"])
	s.Assert().NotContains(body, "outcome")
}

func (s *HandlerTestSuite) TestGetBattleLive() {
	s.battles.EXPECT().
		Get(gomock.Any(), &battle.GetInput{BattleID: "battle_1"}).
		Return(&battle.GetOutput{Battle: &entities.Battle{
			ID:     "battle_1",
			Status: entities.BattleStatusInProgress,
			Participants: [2]*entities.Participant{
				{PlayerID: "a", Username: "alice"},
				{PlayerID: "b", Username: "bob"},
			},
		}}, nil)

	w := s.request(http.MethodGet, "/v1/battles/battle_1", "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().Equal("battle_1", body["id"])
	s.Assert().Equal("IN_PROGRESS", body["status"])
	s.Assert().NotContains(body, "archived")
}

func (s *HandlerTestSuite) TestGetBattleFallsBackToArchive() {
	s.battles.EXPECT().
		Get(gomock.Any(), &battle.GetInput{BattleID: "battle_1"}).
		Return(nil, errors.NotFound("battle not found"))

	s.archiver.record = &battles.ArchivedBattle{
		ID:           "battle_1",
		ChallengerID: "a",
		OpponentID:   "b",
		Status:       entities.BattleStatusComplete,
		Turns:        5,
		WinnerID:     "a",
	}

	w := s.request(http.MethodGet, "/v1/battles/battle_1", "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	s.Assert().Equal("a", body["winner_id"])
	s.Assert().Equal(true, body["archived"])
}

func (s *HandlerTestSuite) TestGetBattleNotFoundAnywhere() {
	s.battles.EXPECT().
		Get(gomock.Any(), &battle.GetInput{BattleID: "missing"}).
		Return(nil, errors.NotFound("battle not found"))

	w := s.request(http.MethodGet, "/v1/battles/missing", "")
	s.Assert().Equal(http.StatusNotFound, w.Code)
}
