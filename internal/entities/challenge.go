package entities

import "time"

// ChallengeStatus is the lifecycle state of a challenge invitation
type ChallengeStatus string

// Challenge lifecycle states
const (
	ChallengeStatusPending  ChallengeStatus = "PENDING"
	ChallengeStatusAccepted ChallengeStatus = "ACCEPTED"
	ChallengeStatusDeclined ChallengeStatus = "DECLINED"
	ChallengeStatusExpired  ChallengeStatus = "EXPIRED"
)

// Challenge is a pending battle invitation. At most one Pending challenge
// may exist per target at a time; the coordinator enforces that.
type Challenge struct {
	ID           string
	ChallengerID string
	TargetID     string

	// Ref is an opaque handle to whatever surfaced the challenge to the
	// target (a chat message id, for instance). The engine never interprets
	// it.
	Ref string

	Status    ChallengeStatus
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the challenge deadline has passed at the given time
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
