package entities

// StartingTokens is the balance a fresh player record begins with
const StartingTokens int32 = 200

// Level bounds derived from collection size
const (
	MinLevel          int32 = 1
	MaxLevel          int32 = 50
	cardsPerLevel           = 5
)

// BattleStats tracks a player's battle history and progression
type BattleStats struct {
	Wins            int32
	Losses          int32
	TotalBattles    int32
	TotalExperience int32
	Level           int32
}

// NewBattleStats returns zeroed level-1 stats
func NewBattleStats() BattleStats {
	return BattleStats{Level: MinLevel}
}

// Player represents a player's persistent game profile
type Player struct {
	UserID       string
	Username     string
	Collection   []string
	BattleTokens int32
	BattleStats  BattleStats
	CurrentDeck  []string

	// Unix seconds of the last daily token claim, 0 if never claimed
	LastDailyClaim int64
}

// NewPlayer creates a fresh player record with default values
func NewPlayer(userID, username string) *Player {
	return &Player{
		UserID:       userID,
		Username:     username,
		Collection:   []string{},
		BattleTokens: StartingTokens,
		BattleStats:  NewBattleStats(),
		CurrentDeck:  []string{},
	}
}

// AddCard adds a card to the collection. Idempotent: adding an owned card is
// a no-op. Level is recomputed on every collection change.
func (p *Player) AddCard(cardID string) {
	if !p.HasCard(cardID) {
		p.Collection = append(p.Collection, cardID)
	}
	p.updateLevel()
}

// RemoveCard removes a card from the collection, no-op when absent. The card
// is also dropped from the current deck so the deck stays a subset of the
// collection.
func (p *Player) RemoveCard(cardID string) {
	for i, id := range p.Collection {
		if id == cardID {
			p.Collection = append(p.Collection[:i], p.Collection[i+1:]...)
			break
		}
	}
	for i, id := range p.CurrentDeck {
		if id == cardID {
			p.CurrentDeck = append(p.CurrentDeck[:i], p.CurrentDeck[i+1:]...)
			break
		}
	}
	p.updateLevel()
}

// HasCard reports whether the collection contains the card
func (p *Player) HasCard(cardID string) bool {
	for _, id := range p.Collection {
		if id == cardID {
			return true
		}
	}
	return false
}

// AddTokens adjusts the token balance. Negative amounts spend tokens; the
// balance floors at zero rather than going into debt.
func (p *Player) AddTokens(amount int32) {
	p.BattleTokens += amount
	if p.BattleTokens < 0 {
		p.BattleTokens = 0
	}
}

// Clone returns a deep copy, used by settlement to stage mutations before
// they are persisted.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Collection = append([]string(nil), p.Collection...)
	cp.CurrentDeck = append([]string(nil), p.CurrentDeck...)
	return &cp
}

func (p *Player) updateLevel() {
	level := int32(len(p.Collection) / cardsPerLevel)
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	p.BattleStats.Level = level
}
