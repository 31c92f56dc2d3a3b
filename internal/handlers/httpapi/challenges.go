package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/challenge"
)

type issueChallengeRequest struct {
	ChallengerID string `json:"challenger_id"`
	TargetID     string `json:"target_id"`
	Ref          string `json:"ref"`
}

func (h *Handler) issueChallenge(c *gin.Context) {
	var req issueChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed request body"))
		return
	}

	out, err := h.challenges.Issue(c.Request.Context(), &challenge.IssueInput{
		ChallengerID: req.ChallengerID,
		TargetID:     req.TargetID,
		Ref:          req.Ref,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toChallengeResponse(out.Challenge))
}

type respondChallengeRequest struct {
	Accept bool `json:"accept"`
}

func (h *Handler) respondChallenge(c *gin.Context) {
	var req respondChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed request body"))
		return
	}

	out, err := h.challenges.Respond(c.Request.Context(), &challenge.RespondInput{
		TargetID: c.Param("target"),
		Accept:   req.Accept,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"applied": out.Applied}
	if out.Challenge != nil {
		resp["challenge"] = toChallengeResponse(out.Challenge)
	}
	if out.Outcome != nil {
		resp["outcome"] = toOutcomeResponse(out.Outcome)
	}
	c.JSON(http.StatusOK, resp)
}
