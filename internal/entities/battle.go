package entities

// BattleStatus is the lifecycle state of a battle
type BattleStatus string

// Battle lifecycle states
const (
	BattleStatusPending    BattleStatus = "PENDING"
	BattleStatusInProgress BattleStatus = "IN_PROGRESS"
	BattleStatusComplete   BattleStatus = "COMPLETE"
	BattleStatusAborted    BattleStatus = "ABORTED"
)

// RosterCard is a battle-scoped working copy of a catalog card. Card points
// at the shared immutable catalog entry; only CurrentHP mutates.
type RosterCard struct {
	Card      *Card
	CurrentHP int32
}

// Alive reports whether the card can still fight
func (r *RosterCard) Alive() bool {
	return r.CurrentHP > 0
}

// Participant is one side of a battle
type Participant struct {
	PlayerID string
	Username string
	Roster   []*RosterCard
}

// ActiveCard returns the first living card in roster order, nil when the
// side is defeated.
func (p *Participant) ActiveCard() *RosterCard {
	for _, rc := range p.Roster {
		if rc.Alive() {
			return rc
		}
	}
	return nil
}

// RemainingHP sums the hit points of the living roster cards
func (p *Participant) RemainingHP() int32 {
	var total int32
	for _, rc := range p.Roster {
		if rc.Alive() {
			total += rc.CurrentHP
		}
	}
	return total
}

// TurnEvent records one direction of damage within a turn, for audit and
// replay. A full turn appends two events, one per side.
type TurnEvent struct {
	Turn         int32
	AttackerID   string
	AttackerCard string
	DefenderCard string
	Damage       int32
}

// Battle is one battle between two participants. Challenger is always
// Participants[0]; the tie-break on draw-by-exhaustion favors it.
type Battle struct {
	ID           string
	Participants [2]*Participant
	Status       BattleStatus
	Turns        int32
	Events       []TurnEvent
	WinnerID     string
	LoserID      string
	CreatedAt    int64
	ResolvedAt   int64
}

// Challenger returns the initiating side
func (b *Battle) Challenger() *Participant {
	return b.Participants[0]
}

// Opponent returns the challenged side
func (b *Battle) Opponent() *Participant {
	return b.Participants[1]
}

// HasPlayer reports whether the given player is one of the participants
func (b *Battle) HasPlayer(playerID string) bool {
	return b.Participants[0].PlayerID == playerID || b.Participants[1].PlayerID == playerID
}

// Active reports whether the battle still holds its participants' stakes
func (b *Battle) Active() bool {
	return b.Status == BattleStatusPending || b.Status == BattleStatusInProgress
}
