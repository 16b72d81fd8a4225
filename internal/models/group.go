package models

import (
	"sort"

	"golfpulse/internal/gapping"
	"golfpulse/pkg/contracts/domain"
)

// PlayerSession pairs one player with their shots for a session date.
// Group builders expect the slice sorted by player.
type PlayerSession struct {
	Player string
	Shots  []domain.Shot
}

// GappingOutcome carries one player's gapping attempt into the group
// aggregation.
type GappingOutcome struct {
	Player string
	Result *gapping.Result
	Err    error
}

// BuildModelCGroup assembles the group comparison over each player's
// good drives. Players without a single good drive stay out of the
// table.
func BuildModelCGroup(sessions []PlayerSession) ModelCGroupPayload {
	var lines []GroupPlayerLine
	var scatter []PlayerScatter
	for _, ps := range sessions {
		good := filterShots(ps.Shots, domain.Shot.IsGoodDrive)
		if len(good) == 0 {
			continue
		}
		lines = append(lines, groupLine(ps.Player, good))
		scatter = append(scatter, PlayerScatter{
			Player:    ps.Player,
			Points:    driverPoints(good),
			Ellipse95: covarianceEllipse(column(good, carryOf), column(good, offlineOf), 0.95),
		})
	}
	return ModelCGroupPayload{
		Lines:     lines,
		Scatter:   scatter,
		Takeaways: groupTakeaways(lines, false),
	}
}

// BuildModelD assembles the ranking board over each player's good
// drives. Accuracy ranks by fairway percentage, unlike the comparison
// table's absolute offline.
func BuildModelD(sessions []PlayerSession) ModelDPayload {
	var lines []GroupPlayerLine
	for _, ps := range sessions {
		good := filterShots(ps.Shots, domain.Shot.IsGoodDrive)
		if len(good) == 0 {
			continue
		}
		lines = append(lines, groupLine(ps.Player, good))
	}
	return ModelDPayload{
		Lines: lines,
		Rankings: []GroupRanking{
			{Metric: RankCarry, Players: rankPlayers(lines, func(l GroupPlayerLine) float64 { return l.CarryMean })},
			{Metric: RankFairwayPct, Players: rankPlayers(lines, func(l GroupPlayerLine) float64 { return l.FairwayPct })},
			{Metric: RankSmash, Players: rankPlayers(lines, func(l GroupPlayerLine) float64 { return l.SmashMean })},
		},
		Leaders: groupTakeaways(lines, true),
	}
}

// groupLine computes one player's comparison row over their good drives.
func groupLine(player string, good []domain.Shot) GroupPlayerLine {
	carries := column(good, carryOf)
	offlines := column(good, offlineOf)
	return GroupPlayerLine{
		Player:         player,
		N:              len(good),
		CarryMean:      mean(carries),
		CarryStdDev:    sampleStdDev(carries),
		OfflineMean:    mean(offlines),
		OfflineStdDev:  sampleStdDev(offlines),
		OfflineAbsMean: mean(column(good, absOfflineOf)),
		FairwayPct:     fairwayPercent(good),
		SmashMean:      presentMean(column(good, smashOf)),
		BackSpinMean:   presentMean(column(good, func(s domain.Shot) float64 { return s.BackSpin })),
		SpinAxisMean:   presentMean(column(good, spinAxisOf)),
		SpinLatMean:    presentMean(column(good, func(s domain.Shot) float64 { return s.SpinLat })),
		HLAMean:        presentMean(column(good, func(s domain.Shot) float64 { return s.HLA })),
		VLAMean:        presentMean(column(good, func(s domain.Shot) float64 { return s.VLA })),
		PeakHeightMean: presentMean(column(good, func(s domain.Shot) float64 { return s.PeakHeight })),
	}
}

// groupTakeaways picks the standout players of a session. Ties go to
// the first line, so callers pass lines in player order. A zero smash
// mean marks a line without smash data; those never win best smash.
func groupTakeaways(lines []GroupPlayerLine, accuracyByFairway bool) GroupTakeaways {
	var out GroupTakeaways
	var bestCarry, bestAcc, bestSmash float64
	for _, l := range lines {
		if out.BestCarry == "" || l.CarryMean > bestCarry {
			out.BestCarry = l.Player
			bestCarry = l.CarryMean
		}
		if accuracyByFairway {
			if out.BestAccuracy == "" || l.FairwayPct > bestAcc {
				out.BestAccuracy = l.Player
				bestAcc = l.FairwayPct
			}
		} else {
			if out.BestAccuracy == "" || l.OfflineAbsMean < bestAcc {
				out.BestAccuracy = l.Player
				bestAcc = l.OfflineAbsMean
			}
		}
		if l.SmashMean > 0 && (out.BestSmash == "" || l.SmashMean > bestSmash) {
			out.BestSmash = l.Player
			bestSmash = l.SmashMean
		}
	}
	return out
}

// rankPlayers orders players descending by the metric. Stable, so equal
// values keep the incoming player order.
func rankPlayers(lines []GroupPlayerLine, metric func(GroupPlayerLine) float64) []string {
	ordered := append([]GroupPlayerLine(nil), lines...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return metric(ordered[i]) > metric(ordered[j])
	})
	names := make([]string, len(ordered))
	for i, l := range ordered {
		names[i] = l.Player
	}
	return names
}

// BuildModelF collects one session summary per player on the date.
func BuildModelF(sessions []PlayerSession) ModelFPayload {
	summaries := make([]domain.SessionSummary, 0, len(sessions))
	for _, ps := range sessions {
		if len(ps.Shots) == 0 {
			continue
		}
		summaries = append(summaries, domain.SummarizeSession(ps.Shots))
	}
	return ModelFPayload{Summaries: summaries}
}

// BuildModelG pools every shot of the session, all clubs included.
func BuildModelG(sessions []PlayerSession) ModelGPayload {
	var all []domain.Shot
	players := 0
	for _, ps := range sessions {
		if len(ps.Shots) == 0 {
			continue
		}
		players++
		all = append(all, ps.Shots...)
	}
	carries := column(all, carryOf)
	abs := column(all, absOfflineOf)
	return ModelGPayload{
		PlayerCount:      players,
		ShotCount:        len(all),
		CarryMean:        mean(carries),
		CarryStdDev:      sampleStdDev(carries),
		OfflineAbsMean:   mean(abs),
		OfflineAbsStdDev: sampleStdDev(abs),
	}
}

// BuildModelHGroup aggregates the valid gapping results of the session:
// mean and spread across per-player carry means, pooled absolute
// offline weighted by good shots, and one status line per player. The
// second return is false when not a single player passed gapping.
func BuildModelHGroup(outcomes []GappingOutcome) (ModelHGroupPayload, bool) {
	var (
		statuses   []PlayerGappingStatus
		carryMeans []float64
		absSum     float64
		goodTotal  int
	)
	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			reason := "no gapping result"
			if o.Err != nil {
				reason = o.Err.Error()
			}
			statuses = append(statuses, PlayerGappingStatus{
				Player: o.Player,
				Status: domain.StatusDegraded,
				Reason: reason,
			})
			continue
		}
		statuses = append(statuses, PlayerGappingStatus{
			Player:    o.Player,
			Status:    domain.StatusOK,
			GoodShots: o.Result.GoodShots,
		})
		carryMeans = append(carryMeans, o.Result.CarryMean)
		absSum += o.Result.OfflineAbsMean * float64(o.Result.GoodShots)
		goodTotal += o.Result.GoodShots
	}

	payload := ModelHGroupPayload{
		PlayerCount: len(carryMeans),
		CarryMean:   mean(carryMeans),
		CarryStdDev: sampleStdDev(carryMeans),
		Statuses:    statuses,
	}
	if goodTotal > 0 {
		payload.OfflineAbsMean = absSum / float64(goodTotal)
	}
	return payload, len(carryMeans) > 0
}
