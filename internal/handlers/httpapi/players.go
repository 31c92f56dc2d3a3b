package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/player"
)

type createPlayerRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (h *Handler) createPlayer(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed request body"))
		return
	}

	out, err := h.players.GetOrCreate(c.Request.Context(), &player.GetOrCreateInput{
		UserID:   req.UserID,
		Username: req.Username,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	c.JSON(status, toPlayerResponse(out.Player))
}

func (h *Handler) getPlayer(c *gin.Context) {
	out, err := h.players.Get(c.Request.Context(), &player.GetInput{UserID: c.Param("id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPlayerResponse(out.Player))
}

func (h *Handler) grantStarter(c *gin.Context) {
	out, err := h.players.GrantStarterCards(c.Request.Context(), &player.GrantStarterInput{
		UserID: c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player": toPlayerResponse(out.Player),
		"cards":  toCardResponses(out.Cards),
	})
}

func (h *Handler) claimDaily(c *gin.Context) {
	out, err := h.players.ClaimDaily(c.Request.Context(), &player.ClaimDailyInput{
		UserID: c.Param("id"),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"awarded": out.Awarded,
		"balance": out.Balance,
	})
}

type setDeckRequest struct {
	CardIDs []string `json:"card_ids"`
}

func (h *Handler) setDeck(c *gin.Context) {
	var req setDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed request body"))
		return
	}

	out, err := h.players.SetDeck(c.Request.Context(), &player.SetDeckInput{
		UserID:  c.Param("id"),
		CardIDs: req.CardIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPlayerResponse(out.Player))
}

type purchasePackRequest struct {
	Rarity string `json:"rarity"`
}

func (h *Handler) purchasePack(c *gin.Context) {
	var req purchasePackRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed request body"))
			return
		}
	}

	out, err := h.players.PurchasePack(c.Request.Context(), &player.PurchasePackInput{
		UserID: c.Param("id"),
		Rarity: req.Rarity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":   toCardResponses(out.Cards),
		"balance": out.Balance,
	})
}
