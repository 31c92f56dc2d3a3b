// Package httpapi exposes the engine over HTTP with gin. Routes map onto the
// orchestrator services one-to-one; no game logic lives here.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/challenge"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/player"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
)

// CardCatalog is the read side of the catalog the API serves
type CardCatalog interface {
	GetByID(cardID string) (*entities.Card, error)
	ByRarity(rarity string) []*entities.Card
	Cards() []*entities.Card
}

// Config holds the dependencies for the HTTP handler
type Config struct {
	Players    player.Service
	Challenges challenge.Service
	Battles    battle.Service
	Catalog    CardCatalog

	// Archive serves resolved battles after they leave the registry;
	// optional
	Archive battles.Archiver
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Players == nil {
		vb.RequiredField("Players")
	}
	if c.Challenges == nil {
		vb.RequiredField("Challenges")
	}
	if c.Battles == nil {
		vb.RequiredField("Battles")
	}
	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}

	return vb.Build()
}

// Handler wires the orchestrator services into gin routes
type Handler struct {
	players    player.Service
	challenges challenge.Service
	battles    battle.Service
	catalog    CardCatalog
	archive    battles.Archiver
}

// NewHandler creates a new HTTP handler with the provided dependencies
func NewHandler(cfg *Config) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Handler{
		players:    cfg.Players,
		challenges: cfg.Challenges,
		battles:    cfg.Battles,
		catalog:    cfg.Catalog,
		archive:    cfg.Archive,
	}, nil
}

// RegisterRoutes attaches every route to the engine
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.healthz)

	v1 := r.Group("/v1")
	{
		v1.POST("/players", h.createPlayer)
		v1.GET("/players/:id", h.getPlayer)
		v1.POST("/players/:id/starter", h.grantStarter)
		v1.POST("/players/:id/daily", h.claimDaily)
		v1.PUT("/players/:id/deck", h.setDeck)
		v1.POST("/players/:id/packs", h.purchasePack)

		v1.GET("/cards", h.listCards)
		v1.GET("/cards/:id", h.getCard)

		v1.POST("/challenges", h.issueChallenge)
		v1.POST("/challenges/:target/respond", h.respondChallenge)

		v1.GET("/battles/:id", h.getBattle)
	}
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// writeError maps an engine error onto an HTTP status via its code
func writeError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	body := gin.H{
		"code":    code.String(),
		"message": errors.GetMessage(err),
	}
	if meta := errors.GetMeta(err); len(meta) > 0 {
		body["meta"] = meta
	}
	c.JSON(code.HTTPStatus(), gin.H{"error": body})
}
