package domain

import (
	"time"
)

// SessionSummary aggregates one (player, date) session for the Sessions
// sheet of the Base workbook and for the session-level group models.
// Fairway and carry counts follow the coaching definitions: the fairway
// count is over driver shots only, the average carry over good drives.
type SessionSummary struct {
	Player             string    `json:"player" validate:"required"`
	Hand               Hand      `json:"hand,omitempty"`
	Date               time.Time `json:"date" validate:"required"`
	TotalShots         int       `json:"total_shots" validate:"min=0"`
	ClubsPlayed        int       `json:"clubs_played" validate:"min=0"`
	DriveCount         int       `json:"drive_count" validate:"min=0"`
	DriverFairwayCount int       `json:"driver_fairway_count" validate:"min=0"`
	GoodDriveCount     int       `json:"good_drive_count" validate:"min=0"`
	AvgDriveCarry      float64   `json:"avg_drive_carry"`
}

// Key returns the (player, date) key of the summarized session.
func (s SessionSummary) Key() SessionKey {
	return SessionKey{Player: s.Player, Date: DateKey(s.Date)}
}

// SummarizeSession builds a SessionSummary from one session's shots.
// Shots must all share the same (player, date); an empty slice yields a
// zero summary.
func SummarizeSession(shots []Shot) SessionSummary {
	var sum SessionSummary
	if len(shots) == 0 {
		return sum
	}
	sum.Player = shots[0].Player
	sum.Hand = shots[0].Hand
	sum.Date = shots[0].Date
	sum.TotalShots = len(shots)

	clubs := make(map[string]struct{})
	var driveCarry float64
	for _, shot := range shots {
		if club := shot.Club; club != "" {
			clubs[club] = struct{}{}
		}
		if !shot.IsDriver() {
			continue
		}
		sum.DriveCount++
		if shot.IsFairway() {
			sum.DriverFairwayCount++
		}
		if shot.IsGoodDrive() {
			sum.GoodDriveCount++
			driveCarry += shot.Carry
		}
	}
	sum.ClubsPlayed = len(clubs)
	if sum.GoodDriveCount > 0 {
		sum.AvgDriveCarry = driveCarry / float64(sum.GoodDriveCount)
	}
	return sum
}
