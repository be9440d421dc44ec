package eaip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAirfield() *Airfield {
	return &Airfield{
		ICAO: "EGKK",
		Name: "Gatwick",
		Runways: []Runway{
			{Designator: "08R/26L", LengthMeters: 3316, WidthMeters: 45},
			{Designator: "08L/26R", LengthMeters: 2565, WidthMeters: 45},
		},
		Radios: []Radio{
			{Service: "TWR", Callsign: "Gatwick Tower", FrequencyMHz: 124.230},
			{Service: "TWR", Callsign: "Gatwick Tower", FrequencyMHz: 134.225},
			{Service: "APP", Callsign: "Gatwick Director", FrequencyMHz: 126.825},
		},
	}
}

func TestRunwayByDesignator(t *testing.T) {
	a := testAirfield()

	rwy, ok := a.RunwayByDesignator("08L/26R")
	require.True(t, ok)
	assert.Equal(t, 2565.0, rwy.LengthMeters)

	_, ok = a.RunwayByDesignator("09/27")
	assert.False(t, ok)
}

func TestRadiosByService(t *testing.T) {
	a := testAirfield()

	twr := a.RadiosByService("TWR")
	require.Len(t, twr, 2)
	assert.Equal(t, 124.230, twr[0].FrequencyMHz, "published order is preserved")
	assert.Equal(t, 134.225, twr[1].FrequencyMHz)

	assert.Empty(t, a.RadiosByService("GND"))
}
