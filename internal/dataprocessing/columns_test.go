package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapColumns(t *testing.T) {
	header := []string{"\uFEFFdate", "Player", "Club Name", "Carry Dist (m)", "Offline (m)", "Ball Speed", "club speed", "Shot Type"}
	layout := mapColumns(header)

	assert.Equal(t, 0, layout.date, "BOM on the first header cell is stripped")
	assert.Equal(t, 1, layout.player)
	assert.Equal(t, 2, layout.club)
	assert.Equal(t, 3, layout.field(colCarry))
	assert.Equal(t, 4, layout.field(colOffline))
	assert.Equal(t, 5, layout.field(colBallSpeed))
	assert.Equal(t, 6, layout.field(colClubSpeed), "case-insensitive fallback")
	assert.Equal(t, -1, layout.field(colSmash))
	assert.Equal(t, map[string]int{"Shot Type": 7}, layout.extras)
}

func TestMapColumnsFirstMatchWins(t *testing.T) {
	layout := mapColumns([]string{"Carry", "Carry (m)", "date"})

	assert.Equal(t, 0, layout.field(colCarry))
	assert.Equal(t, 2, layout.date)
}

func TestMapColumnsNoDate(t *testing.T) {
	layout := mapColumns([]string{"Player", "Carry", "Offline"})
	assert.Equal(t, -1, layout.date)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "plain", in: "152.4", want: 152.4},
		{name: "integer", in: "250", want: 250},
		{name: "decimal comma", in: "12,5", want: 12.5},
		{name: "degree sign", in: "14,2°", want: 14.2},
		{name: "negative", in: "-3.1", want: -3.1},
		{name: "padded", in: "  98 ", want: 98},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseNumber(tt.in), 1e-9)
		})
	}

	for _, in := range []string{"", "abc", "--", "12,5,0"} {
		assert.True(t, math.IsNaN(parseNumber(in)), "parseNumber(%q)", in)
	}
}

func TestParseSigned(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "left suffix", in: "20 L", want: -20},
		{name: "right suffix", in: "15 R", want: 15},
		{name: "no space", in: "20L", want: -20},
		{name: "lowercase", in: "8 l", want: -8},
		{name: "decimal comma with suffix", in: "15,5 R", want: 15.5},
		{name: "degree sign", in: "14,2°", want: 14.2},
		{name: "plain negative", in: "-5", want: -5},
		{name: "plain positive", in: "10", want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseSigned(tt.in), 1e-9)
		})
	}

	for _, in := range []string{"", "NaN", "left", "L", "12 X"} {
		assert.True(t, math.IsNaN(parseSigned(in)), "parseSigned(%q)", in)
	}
}
