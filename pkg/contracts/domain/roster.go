package domain

// Hand is a player's dominant hand.
type Hand string

const (
	HandRight   Hand = "R"
	HandLeft    Hand = "L"
	HandUnknown Hand = ""
)

// RosterEntry is one line of the coaching roster: the canonical alias a
// raw name variant maps to, plus the player's dominant hand.
type RosterEntry struct {
	Alias string `json:"alias" yaml:"alias" validate:"required"`
	Hand  Hand   `json:"hand,omitempty" yaml:"hand,omitempty" validate:"omitempty,oneof=R L"`
}
