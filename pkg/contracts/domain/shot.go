package domain

import (
	"math"
	"strings"
	"time"
)

// Shot represents one recorded strike from a launch-monitor export.
// Optional measures are NaN when the export lacks the column; Carry and
// Offline are always finite (rows failing coercion never become Shots).
// Offline, SpinAxis and HLA are signed: negative means left of the target
// line, positive means right.
type Shot struct {
	Player     string             `json:"player" validate:"required"`
	RawPlayer  string             `json:"raw_player,omitempty"`
	Hand       Hand               `json:"hand,omitempty"`
	Date       time.Time          `json:"date" validate:"required"`
	Index      int                `json:"index" validate:"min=0"`
	Club       string             `json:"club,omitempty"`
	Carry      float64            `json:"carry"`
	Total      float64            `json:"total"`
	Offline    float64            `json:"offline"`
	ClubSpeed  float64            `json:"club_speed"`
	BallSpeed  float64            `json:"ball_speed"`
	Smash      float64            `json:"smash"`
	BackSpin   float64            `json:"back_spin"`
	SpinAxis   float64            `json:"spin_axis"`
	SpinTotal  float64            `json:"spin_total"`
	SpinLat    float64            `json:"spin_lat"`
	HLA        float64            `json:"hla"`
	VLA        float64            `json:"vla"`
	PeakHeight float64            `json:"peak_height"`
	Extra      map[string]float64 `json:"extra,omitempty"`
}

// ShotKey identifies a shot inside the Base store. Dates are keyed in
// ISO form so keys stay comparable regardless of time.Time internals.
type ShotKey struct {
	Player string
	Date   string
	Index  int
}

// SessionKey identifies one (player, date) session.
type SessionKey struct {
	Player string
	Date   string
}

// Key returns the Base store key for the shot.
func (s Shot) Key() ShotKey {
	return ShotKey{Player: s.Player, Date: DateKey(s.Date), Index: s.Index}
}

// SessionKey returns the (player, date) key of the session the shot belongs to.
func (s Shot) SessionKey() SessionKey {
	return SessionKey{Player: s.Player, Date: DateKey(s.Date)}
}

// IsDriver reports whether the shot was hit with a driver. Club labels
// vary across monitors ("Dr", "DRIVER", "Driver 10.5").
func (s Shot) IsDriver() bool {
	club := strings.ToUpper(strings.TrimSpace(s.Club))
	return strings.HasPrefix(club, "DR") || strings.Contains(club, "DRIVER")
}

// IsFairway reports whether the shot finished inside the fairway band.
func (s Shot) IsFairway() bool {
	return math.Abs(s.Offline) <= FairwayHalfWidthMeters
}

// IsGoodDrive reports whether the shot is a driver strike past the
// good-drive carry threshold.
func (s Shot) IsGoodDrive() bool {
	return s.IsDriver() && s.Carry > GoodDriveCarryMeters
}

const (
	// FairwayHalfWidthMeters is the half-width of the simulated fairway
	// band used for accuracy counts.
	FairwayHalfWidthMeters = 20.0

	// GoodDriveCarryMeters is the carry threshold above which a driver
	// strike counts as a good drive.
	GoodDriveCarryMeters = 120.0
)

// DateKey formats a session date as its canonical ISO key (2006-01-02).
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DateCompact formats a session date the way report artifact names embed
// it (02012006).
func DateCompact(t time.Time) string {
	return t.Format("02012006")
}

// DateDir formats a session date the way routing directories embed it
// (02-01-2006).
func DateDir(t time.Time) string {
	return t.Format("02-01-2006")
}
