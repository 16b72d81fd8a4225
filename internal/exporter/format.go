package exporter

import (
	"math"
	"strconv"
	"strings"

	"golfpulse/pkg/contracts/domain"
)

// formatMeasure renders a measure for a CSV cell. Missing measures are
// NaN inside the domain; they become empty cells so spreadsheets show
// blanks instead of a NaN token.
func formatMeasure(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseMeasure is the inverse of formatMeasure: empty cells map back to
// NaN, anything else must parse as a float.
func parseMeasure(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// readMeasure maps empty or malformed cells to NaN, the ingestion
// missing-value convention.
func readMeasure(s string) float64 {
	v, err := parseMeasure(s)
	if err != nil {
		return math.NaN()
	}
	return v
}

// measureValues returns the shot's measure fields in canonical column
// order, matching the columns after Club in shotColumns.
func measureValues(s domain.Shot) []float64 {
	return []float64{
		s.Carry, s.Total, s.Offline,
		s.ClubSpeed, s.BallSpeed, s.Smash,
		s.BackSpin, s.SpinAxis, s.SpinTotal, s.SpinLat,
		s.HLA, s.VLA, s.PeakHeight,
	}
}

// measureFields maps canonical column names onto the shot's measure
// fields for the read side.
func measureFields(s *domain.Shot) map[string]*float64 {
	return map[string]*float64{
		"Carry":      &s.Carry,
		"Total":      &s.Total,
		"Offline":    &s.Offline,
		"ClubSpeed":  &s.ClubSpeed,
		"BallSpeed":  &s.BallSpeed,
		"Smash":      &s.Smash,
		"BackSpin":   &s.BackSpin,
		"SpinAxis":   &s.SpinAxis,
		"SpinTotal":  &s.SpinTotal,
		"SpinLat":    &s.SpinLat,
		"HLA":        &s.HLA,
		"VLA":        &s.VLA,
		"PeakHeight": &s.PeakHeight,
	}
}
