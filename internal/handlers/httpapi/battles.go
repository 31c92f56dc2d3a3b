package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
)

// getBattle serves live battles from the registry and falls back to the
// archive once they have settled
func (h *Handler) getBattle(c *gin.Context) {
	battleID := c.Param("id")

	out, err := h.battles.Get(c.Request.Context(), &battle.GetInput{BattleID: battleID})
	if err == nil {
		c.JSON(http.StatusOK, toBattleResponse(out.Battle))
		return
	}
	if !errors.IsNotFound(err) || h.archive == nil {
		writeError(c, err)
		return
	}

	record, archiveErr := h.archive.GetArchived(c.Request.Context(), battleID)
	if archiveErr != nil {
		writeError(c, archiveErr)
		return
	}
	c.JSON(http.StatusOK, toArchivedBattleResponse(record))
}
