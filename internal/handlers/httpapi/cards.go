package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCard(c *gin.Context) {
	card, err := h.catalog.GetByID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCardResponse(card))
}

func (h *Handler) listCards(c *gin.Context) {
	rarity := c.Query("rarity")

	cards := h.catalog.Cards()
	if rarity != "" {
		cards = h.catalog.ByRarity(rarity)
	}

	c.JSON(http.StatusOK, gin.H{"cards": toCardResponses(cards)})
}
