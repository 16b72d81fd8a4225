package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Canonical column names produced by the mapper. Launch monitors disagree
// on header spelling, so every canonical column carries a list of accepted
// aliases collected from real exports.
const (
	colDate       = "Date"
	colPlayer     = "Player"
	colClub       = "Club"
	colCarry      = "Carry"
	colTotal      = "Total"
	colOffline    = "Offline"
	colClubSpeed  = "ClubSpeed"
	colBallSpeed  = "BallSpeed"
	colSmash      = "Smash"
	colBackSpin   = "BackSpin"
	colSpinAxis   = "SpinAxis"
	colHLA        = "HLA"
	colVLA        = "VLA"
	colPeakHeight = "PeakHeight"
)

// columnAliases maps each canonical column onto the header spellings
// accepted for it. Matching is exact-first, then case-insensitive on the
// trimmed header.
var columnAliases = map[string][]string{
	colDate:       {"date", "Date"},
	colPlayer:     {"player", "Player", "Joueur", "joueur", "name", "Name"},
	colClub:       {"Club Name", "Club", "club", "ClubName", "Club Type"},
	colCarry:      {"Carry", "Carry Dist (m)", "Carry (m)", "CarryDistance", "Carry Distance"},
	colTotal:      {"Total", "Total Dist (m)", "Total (m)", "TotalDistance", "Total Distance"},
	colOffline:    {"Offline", "Offline (m)", "offline"},
	colClubSpeed:  {"ClubSpeed", "Club Speed", "Club Speed (mph)", "Club Speed (m/s)", "Club Speed (km/h)"},
	colBallSpeed:  {"BallSpeed", "Ball Speed", "Ball Speed (mph)", "Ball Speed (m/s)", "Ball Speed (km/h)"},
	colSmash:      {"Smash", "Smash Factor", "SmashFactor"},
	colBackSpin:   {"BackSpin", "Back Spin", "Backspin", "Spin Back", "Back Spin (rpm)"},
	colSpinAxis:   {"SpinAxis", "Spin Axis", "Spin axis", "SpinAxis (deg)"},
	colHLA:        {"HLA", "HLA (deg)", "Horizontal Launch Angle", "Hor Launch Angle", "Launch H"},
	colVLA:        {"VLA", "VLA (deg)", "Vertical Launch Angle", "Vert Launch Angle", "Launch V"},
	colPeakHeight: {"PeakHeight", "Peak Height", "Peak Height (m)", "peak height", "Apex"},
}

// signedColumns carry left/right direction; their cells may read "20 L"
// or "15R" instead of a signed number.
var signedColumns = map[string]bool{
	colOffline:  true,
	colHLA:      true,
	colVLA:      true,
	colSpinAxis: true,
}

var headerExact, headerFolded = buildHeaderLookup()

func buildHeaderLookup() (map[string]string, map[string]string) {
	exact := make(map[string]string)
	folded := make(map[string]string)
	for canonical, aliases := range columnAliases {
		for _, alias := range aliases {
			exact[alias] = canonical
			folded[strings.ToLower(alias)] = canonical
		}
	}
	return exact, folded
}

// columnLayout records where each canonical column sits in one upload's
// header row. Absent columns are -1. extras keeps every unmapped header
// with its position so unknown measures survive the import.
type columnLayout struct {
	date   int
	player int
	club   int
	fields map[string]int
	extras map[string]int
}

// field returns the position of a canonical measure column, -1 when the
// upload does not carry it.
func (l columnLayout) field(name string) int {
	if idx, ok := l.fields[name]; ok {
		return idx
	}
	return -1
}

// mapColumns resolves a header row into a columnLayout. The first match
// wins when an upload repeats a header.
func mapColumns(header []string) columnLayout {
	layout := columnLayout{
		date:   -1,
		player: -1,
		club:   -1,
		fields: make(map[string]int),
		extras: make(map[string]int),
	}
	for i, raw := range header {
		name := cleanHeader(raw)
		if name == "" {
			continue
		}
		canonical, ok := headerExact[name]
		if !ok {
			canonical, ok = headerFolded[strings.ToLower(name)]
		}
		if !ok {
			if _, dup := layout.extras[name]; !dup {
				layout.extras[name] = i
			}
			continue
		}
		switch canonical {
		case colDate:
			if layout.date < 0 {
				layout.date = i
			}
		case colPlayer:
			if layout.player < 0 {
				layout.player = i
			}
		case colClub:
			if layout.club < 0 {
				layout.club = i
			}
		default:
			if _, dup := layout.fields[canonical]; !dup {
				layout.fields[canonical] = i
			}
		}
	}
	return layout
}

// cleanHeader trims whitespace and the UTF-8 BOM some exports prepend to
// the first header cell.
func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
}

// cell returns the trimmed value at idx, or "" when the column is absent
// or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber coerces a cell to a float. Decimal commas and degree signs
// are tolerated; anything unparsable is NaN, the package-wide missing
// value marker.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "°", ""))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

var lrPattern = regexp.MustCompile(`^([+-]?\d+(?:[.,]\d+)?)\s*([LR])$`)

// parseSigned coerces a directional cell to a signed float. Monitors
// write these either as plain numbers or as a magnitude with an L/R
// suffix ("20 L", "15R"); left is negative.
func parseSigned(s string) float64 {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "°", "")))
	if s == "" {
		return math.NaN()
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return v
	}
	m := lrPattern.FindStringSubmatch(s)
	if m == nil {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	if m[2] == "L" {
		return -v
	}
	return v
}
