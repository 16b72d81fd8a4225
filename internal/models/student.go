package models

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golfpulse/internal/dataprocessing"
	"golfpulse/internal/gapping"
	"golfpulse/pkg/contracts/domain"
)

// Measure getters shared by the builders.
func carryOf(s domain.Shot) float64      { return s.Carry }
func totalOf(s domain.Shot) float64      { return s.Total }
func offlineOf(s domain.Shot) float64    { return s.Offline }
func absOfflineOf(s domain.Shot) float64 { return math.Abs(s.Offline) }
func smashOf(s domain.Shot) float64      { return s.Smash }
func spinAxisOf(s domain.Shot) float64   { return s.SpinAxis }

// filterShots returns the shots matching pred, preserving order.
func filterShots(shots []domain.Shot, pred func(domain.Shot) bool) []domain.Shot {
	out := make([]domain.Shot, 0, len(shots))
	for _, s := range shots {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// driverPoints converts shots to scatter points.
func driverPoints(shots []domain.Shot) []DriverShotPoint {
	points := make([]DriverShotPoint, len(shots))
	for i, s := range shots {
		points[i] = DriverShotPoint{
			Index:    s.Index,
			Carry:    s.Carry,
			Offline:  s.Offline,
			Smash:    optMeasure(s.Smash),
			HLA:      optMeasure(s.HLA),
			VLA:      optMeasure(s.VLA),
			BackSpin: optMeasure(s.BackSpin),
			SpinLat:  optMeasure(s.SpinLat),
		}
	}
	return points
}

// handOf returns the roster hand attached to the session shots.
func handOf(shots []domain.Shot) domain.Hand {
	for _, s := range shots {
		if s.Hand != domain.HandUnknown {
			return s.Hand
		}
	}
	return domain.HandUnknown
}

// BuildModelA assembles the session overview: headline counts over the
// whole session plus the good-drive scatter with its 68% and 95%
// confidence ellipses.
func BuildModelA(shots []domain.Shot) ModelAPayload {
	summary := domain.SummarizeSession(shots)
	good := filterShots(shots, domain.Shot.IsGoodDrive)
	carries := column(good, carryOf)
	offlines := column(good, offlineOf)

	return ModelAPayload{
		TotalShots:  summary.TotalShots,
		ClubsPlayed: summary.ClubsPlayed,
		Hand:        summary.Hand,
		GoodDrives:  driverPoints(good),
		Ellipse68:   covarianceEllipse(carries, offlines, 0.68),
		Ellipse95:   covarianceEllipse(carries, offlines, 0.95),
		DriveStats: DriveBandStats{
			N:             len(good),
			FairwayPct:    fairwayPercent(good),
			CarryMean:     mean(carries),
			OfflineStdDev: sampleStdDev(offlines),
			SmashMean:     presentMean(column(good, smashOf)),
		},
	}
}

// BuildModelB assembles the driver deep-dive over every driver shot of
// the session: KPI table, dispersion readout, dominant fault and course
// strategy.
func BuildModelB(shots []domain.Shot) ModelBPayload {
	drives := filterShots(shots, domain.Shot.IsDriver)
	good := filterShots(drives, domain.Shot.IsGoodDrive)
	hand := handOf(shots)

	disp := dispersionSeries(drives)
	read := dispersionRead(disp, hand)

	return ModelBPayload{
		Hand:   hand,
		Drives: driverPoints(drives),
		KPIs: DriverKPIs{
			DriveCount:       len(drives),
			GoodDriveCount:   len(good),
			GoodCarryMean:    mean(column(good, carryOf)),
			TotalMean:        presentMean(column(drives, totalOf)),
			OfflineMean:      mean(column(drives, offlineOf)),
			OfflineStdDev:    sampleStdDev(column(drives, offlineOf)),
			FairwayPct:       fairwayPercent(drives),
			ClubSpeedMean:    presentMean(column(drives, func(s domain.Shot) float64 { return s.ClubSpeed })),
			BallSpeedMean:    presentMean(column(drives, func(s domain.Shot) float64 { return s.BallSpeed })),
			SmashMean:        presentMean(column(drives, smashOf)),
			HLAMean:          presentMean(column(drives, func(s domain.Shot) float64 { return s.HLA })),
			VLAMean:          presentMean(column(drives, func(s domain.Shot) float64 { return s.VLA })),
			BackSpinMean:     presentMean(column(drives, func(s domain.Shot) float64 { return s.BackSpin })),
			SpinAxisMean:     presentMean(column(drives, spinAxisOf)),
			PeakHeightMean:   presentMean(column(drives, func(s domain.Shot) float64 { return s.PeakHeight })),
			DescentAngleMean: extraMean(drives, "Desc Angle", "Descent Angle"),
		},
		Dispersion: read,
		Ellipse95:  covarianceEllipse(column(disp, carryOf), column(disp, offlineOf), 0.95),
		Fault:      dominantFault(drives, hand),
		Course:     courseStrategy(read),
	}
}

// dispersionSeries is the subset of drives the dispersion chart and its
// stats run on. When any drive carries a smash value the series keeps
// only those drives, matching the color-coded scatter.
func dispersionSeries(drives []domain.Shot) []domain.Shot {
	anySmash := false
	for _, s := range drives {
		if isFinite(s.Smash) {
			anySmash = true
			break
		}
	}
	if !anySmash {
		return drives
	}
	return filterShots(drives, func(s domain.Shot) bool { return isFinite(s.Smash) })
}

func dispersionRead(disp []domain.Shot, hand domain.Hand) DispersionRead {
	read := DispersionRead{
		N:             len(disp),
		OfflineBias:   mean(column(disp, offlineOf)),
		FairwayPct:    fairwayPercent(disp),
		CurveTendency: CurveUnknown,
	}
	if axis := presentValues(column(disp, spinAxisOf)); len(axis) > 0 {
		m := mean(axis)
		read.SpinAxisMean = &m
		read.CurveTendency = curveLabel(hand, m)
	}
	return read
}

// curveLabel names the ball-flight tendency from the mean spin axis.
// Negative axis curves the ball left. For a right-handed player a left
// curve is a draw; for a left-handed player it is a fade.
func curveLabel(hand domain.Hand, spinAxis float64) string {
	if !isFinite(spinAxis) || math.Abs(spinAxis) < 0.2 {
		return CurveNeutral
	}
	left := spinAxis < 0
	if hand == domain.HandLeft {
		if left {
			return CurveFade
		}
		return CurveDraw
	}
	if left {
		return CurveDraw
	}
	return CurveFade
}

// dominantFault qualifies the main miss from the offline spread of all
// drives. Fewer than five drives leave the fault unqualified.
func dominantFault(drives []domain.Shot, hand domain.Hand) *DominantFault {
	off := presentValues(column(drives, offlineOf))
	if len(off) < 5 {
		return nil
	}
	bias := mean(off)
	side := SideLeft
	if bias > 0 {
		side = SideRight
	}
	curve := CurveUnknown
	if axis := presentValues(column(drives, spinAxisOf)); len(axis) > 0 {
		curve = curveLabel(hand, mean(axis))
	}
	return &DominantFault{
		SampleSize:    len(off),
		Bias:          bias,
		Spread:        sampleStdDev(off),
		Side:          side,
		CurveTendency: curve,
	}
}

// courseStrategy turns the dispersion readout into the on-course
// recommendation: comfort level from the fairway share, aim offset
// opposite the bias by half its size.
func courseStrategy(read DispersionRead) *CourseStrategy {
	if read.N == 0 {
		return nil
	}
	side := SideCenter
	switch {
	case read.OfflineBias > 2:
		side = SideRight
	case read.OfflineBias < -2:
		side = SideLeft
	}
	level := LevelRisky
	switch {
	case read.FairwayPct >= 60:
		level = LevelComfortable
	case read.FairwayPct >= 40:
		level = LevelAverage
	}
	return &CourseStrategy{
		DispersionLevel: level,
		BiasSide:        side,
		AimOffsetMeters: -read.OfflineBias * 0.5,
	}
}

// BuildModelCEleve assembles the player's club ladder for the session,
// longest average carry first. Shots without a club label are grouped
// under their own line.
func BuildModelCEleve(shots []domain.Shot) ModelCElevePayload {
	byClub := make(map[string][]domain.Shot)
	for _, s := range shots {
		club := s.Club
		if club == "" {
			club = "(sans club)"
		}
		byClub[club] = append(byClub[club], s)
	}

	lines := make([]ClubLine, 0, len(byClub))
	for club, cs := range byClub {
		carries := column(cs, carryOf)
		lines = append(lines, ClubLine{
			Club:           club,
			N:              len(cs),
			CarryMean:      mean(carries),
			CarryStdDev:    sampleStdDev(carries),
			OfflineMean:    mean(column(cs, offlineOf)),
			OfflineAbsMean: mean(column(cs, absOfflineOf)),
			SmashMean:      presentMean(column(cs, smashOf)),
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].CarryMean != lines[j].CarryMean {
			return lines[i].CarryMean > lines[j].CarryMean
		}
		return lines[i].Club < lines[j].Club
	})
	return ModelCElevePayload{Clubs: lines}
}

// BuildModelE assembles the progression across every session the player
// has on record up to and including the given date. Carry tracks the
// good-drive average, fairway percent the driver accuracy.
func BuildModelE(snap *dataprocessing.BaseSnapshot, player string, date time.Time) ModelEPayload {
	var sessions []SessionProgress
	for _, d := range snap.SessionDatesFor(player) {
		if d.After(date) {
			continue
		}
		sum, ok := snap.SummaryFor(player, d)
		if !ok {
			continue
		}
		fairway := 0.0
		if sum.DriveCount > 0 {
			fairway = float64(sum.DriverFairwayCount) / float64(sum.DriveCount) * 100
		}
		sessions = append(sessions, SessionProgress{
			Date:       d,
			ShotCount:  sum.TotalShots,
			CarryMean:  sum.AvgDriveCarry,
			FairwayPct: fairway,
		})
	}
	return ModelEPayload{Sessions: sessions}
}

// BuildModelHEleve runs gapping for the session and compares it against
// the player's immediately preceding session. A gapping failure on the
// current session returns a degraded marker instead of a payload; a
// failed prior only downgrades the comparison baseline.
func BuildModelHEleve(ctx context.Context, engine *gapping.Engine, snap *dataprocessing.BaseSnapshot, player string, date time.Time) (*ModelHElevePayload, *ModelError) {
	result, err := engine.Gap(ctx, snap.ShotsFor(player, date))
	if err != nil {
		return nil, NewGappingError(domain.ModelHEleve, player, err)
	}

	var cmp gapping.Comparison
	priorDate, ok := priorSessionDate(snap, player, date)
	if !ok {
		cmp = gapping.NoBaseline(*result, "no prior session")
	} else if prior, perr := engine.Gap(ctx, snap.ShotsFor(player, priorDate)); perr != nil {
		cmp = gapping.NoBaseline(*result, fmt.Sprintf("prior session %s failed gapping: %v", domain.DateKey(priorDate), perr))
	} else {
		cmp = gapping.Compare(*result, prior)
	}

	return &ModelHElevePayload{Gapping: result, Comparison: &cmp}, nil
}

// priorSessionDate finds the player's last session strictly before date.
func priorSessionDate(snap *dataprocessing.BaseSnapshot, player string, date time.Time) (time.Time, bool) {
	var prior time.Time
	found := false
	for _, d := range snap.SessionDatesFor(player) {
		if d.Before(date) {
			prior = d
			found = true
		}
	}
	return prior, found
}
