package gapping

// Compare computes the Model H1 deltas (current − prior) between two of
// one player's sessions: the most recent and the immediately preceding
// one by date. Both results must belong to the same player; callers own
// that invariant. A nil prior yields the no-baseline state.
func Compare(current Result, prior *Result) Comparison {
	if prior == nil {
		return NoBaseline(current, "no prior session")
	}
	return Comparison{
		Player:      current.Player,
		CurrentDate: current.Date,
		PriorDate:   prior.Date,
		Baseline:    BaselineOK,

		DeltaCarryMean:      current.CarryMean - prior.CarryMean,
		DeltaCarryStdDev:    current.CarryStdDev - prior.CarryStdDev,
		DeltaOfflineMean:    current.OfflineMean - prior.OfflineMean,
		DeltaOfflineAbsMean: current.OfflineAbsMean - prior.OfflineAbsMean,
		DeltaBackSpinMean:   current.BackSpinMean - prior.BackSpinMean,
		DeltaSideSpinMean:   current.SideSpinMean - prior.SideSpinMean,
		DeltaVLAMean:        current.VLAMean - prior.VLAMean,
		DeltaPeakHeightMean: current.PeakHeightMean - prior.PeakHeightMean,
	}
}

// NoBaseline builds the reportable first-session comparison state. A
// missing baseline is information, not an error: deltas stay zero and
// the reason travels with the record.
func NoBaseline(current Result, reason string) Comparison {
	return Comparison{
		Player:      current.Player,
		CurrentDate: current.Date,
		Baseline:    BaselineNone,
		Reason:      reason,
	}
}
