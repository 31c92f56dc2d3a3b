package challenge

import (
	"context"
	"time"

	"github.com/duelhaven/cardbattle-api/internal/entities"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
)

// ConfirmationResult is the target's answer to a challenge prompt
type ConfirmationResult string

// Prompt outcomes
const (
	ConfirmationAccepted ConfirmationResult = "ACCEPTED"
	ConfirmationDeclined ConfirmationResult = "DECLINED"
	ConfirmationTimedOut ConfirmationResult = "TIMED_OUT"
)

// ConfirmationPrompt surfaces a pending challenge to the target and blocks
// until they answer or the timeout elapses. Implementations wrap whatever
// interaction surface hosts the engine (chat reactions, HTTP long-poll, a
// test stub).
type ConfirmationPrompt interface {
	Await(ctx context.Context, subjectID string, timeout time.Duration) (ConfirmationResult, error)
}

// IssueInput defines the request for issuing a challenge
type IssueInput struct {
	ChallengerID string
	TargetID     string

	// Ref is an opaque handle to the surfaced prompt (a message id, say),
	// stored on the challenge untouched
	Ref string
}

// IssueOutput defines the response for issuing a challenge
type IssueOutput struct {
	Challenge *entities.Challenge
}

// RespondInput defines the target's answer to their pending challenge
type RespondInput struct {
	TargetID string
	Accept   bool
}

// RespondOutput defines the result of a response. Applied is false when there
// was no live challenge to respond to; duplicate answers are a no-op, not an
// error.
type RespondOutput struct {
	Applied   bool
	Challenge *entities.Challenge

	// Outcome is set when an accepted challenge ran and settled
	Outcome *battle.Outcome
}

// ExpireInput defines the request for expiring a target's pending challenge
type ExpireInput struct {
	TargetID string
}

// ExpireOutput reports whether a challenge was actually expired
type ExpireOutput struct {
	Expired   bool
	Challenge *entities.Challenge
}

// AwaitInput defines the request for driving the confirmation prompt
type AwaitInput struct {
	TargetID string
}

// AwaitOutput defines the prompt outcome and the response it mapped to
type AwaitOutput struct {
	Result  ConfirmationResult
	Respond *RespondOutput
}
