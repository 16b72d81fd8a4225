// Package roster resolves raw player names from launch-monitor exports to
// the canonical aliases reports are filed under. The mapping is an explicit
// table loaded from a YAML file, never fuzzy matching: aliases are a frozen
// coaching-business rule.
package roster

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v2"

	"golfpulse/pkg/contracts/domain"
)

// Table maps normalized raw-name variants to roster entries. Lookups are
// case-insensitive and accent-insensitive; unknown names pass through as
// their own canonical identity.
type Table struct {
	players map[string]domain.RosterEntry
}

// tableFile is the on-disk YAML schema:
//
//	players:
//	  "Jean Dupont":  {alias: Dupont, hand: R}
//	  "J. Dûpont":    {alias: Dupont, hand: droitier}
//	  "Marie Claire": Claire
type tableFile struct {
	Players map[string]entry `yaml:"players"`
}

// entry tolerates both the mapping form and a bare alias string.
type entry struct {
	Alias string `yaml:"alias"`
	Hand  string `yaml:"hand"`
}

func (e *entry) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var alias string
	if err := unmarshal(&alias); err == nil {
		e.Alias = alias
		return nil
	}
	type plain entry
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*e = entry(p)
	return nil
}

// NewTable builds a Table from raw-variant keyed entries. Keys are
// normalized; entries with empty aliases fall back to the raw key, blank
// keys are dropped.
func NewTable(players map[string]domain.RosterEntry) *Table {
	table := &Table{players: make(map[string]domain.RosterEntry, len(players))}
	for raw, info := range players {
		key := normalizeName(raw)
		if key == "" {
			continue
		}
		alias := strings.TrimSpace(info.Alias)
		if alias == "" {
			alias = strings.TrimSpace(raw)
		}
		table.players[key] = domain.RosterEntry{Alias: alias, Hand: normalizeHand(string(info.Hand))}
	}
	return table
}

// LoadTable reads the roster YAML file. A missing file yields an empty
// table rather than an error so a coach can start without a roster.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Table{players: map[string]domain.RosterEntry{}}, nil
		}
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", path, err)
	}
	players := make(map[string]domain.RosterEntry, len(file.Players))
	for raw, e := range file.Players {
		players[raw] = domain.RosterEntry{Alias: e.Alias, Hand: domain.Hand(e.Hand)}
	}
	return NewTable(players), nil
}

// Len returns the number of configured variants.
func (t *Table) Len() int {
	return len(t.players)
}

// Resolve maps a raw player name to its canonical identity. Known
// variants resolve to their configured alias; unknown names pass through
// trimmed as their own identity. Empty or blank input is an
// InvalidIdentityError.
func (t *Table) Resolve(rawName string) (string, error) {
	key := normalizeName(rawName)
	if key == "" {
		return "", &InvalidIdentityError{Raw: rawName}
	}
	if info, ok := t.players[key]; ok {
		return info.Alias, nil
	}
	return strings.TrimSpace(rawName), nil
}

// Hand returns the dominant hand recorded for a raw name. Unknown names
// default to right-handed.
func (t *Table) Hand(rawName string) domain.Hand {
	if info, ok := t.players[normalizeName(rawName)]; ok && info.Hand == domain.HandLeft {
		return domain.HandLeft
	}
	return domain.HandRight
}

// InvalidIdentityError signals a player name that cannot resolve to any
// identity (empty or blank once normalized).
type InvalidIdentityError struct {
	Raw string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid player identity: %q", e.Raw)
}

// accentFolder decomposes to NFKD, drops combining marks, recomposes.
var accentFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName reduces a raw name to its lookup key: trim, lower-case,
// fold accents, keep only [a-z0-9].
func normalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(accentFolder, s); err == nil {
		s = folded
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeHand tolerates the spellings seen in roster files.
func normalizeHand(hand string) domain.Hand {
	switch strings.ToLower(strings.TrimSpace(hand)) {
	case "l", "left", "gaucher":
		return domain.HandLeft
	default:
		return domain.HandRight
	}
}
