package eaip

import (
	"fmt"
)

// Airfield is one aerodrome as published in a single eAIP edition.
//
// An Airfield owns its Runways and Radios: they have no identity or lifecycle
// outside their parent. Entities are scoped to exactly one Edition; two
// airfields from different editions are distinct even when their content
// matches.
type Airfield struct {
	// Edition is the publication snapshot this airfield was parsed from.
	Edition Edition `json:"edition"`

	// ICAO is the four-letter location indicator, the primary key within an
	// edition.
	ICAO string `json:"icao"`

	// Name is the published aerodrome name, e.g. "Gatwick".
	Name string `json:"name"`

	// Lat and Lon are the aerodrome reference point in decimal degrees.
	// Zero when the edition does not publish geographical data.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Runways in published order. Designators are unique within the airfield.
	Runways []Runway `json:"runways"`

	// Radios in published order.
	Radios []Radio `json:"radios"`
}

// RunwayByDesignator returns the runway with the given designator, or false.
func (a *Airfield) RunwayByDesignator(designator string) (Runway, bool) {
	for _, r := range a.Runways {
		if r.Designator == designator {
			return r, true
		}
	}
	return Runway{}, false
}

// RadiosByService returns all radio facilities offering the given service,
// e.g. "TWR", in published order.
func (a *Airfield) RadiosByService(service string) []Radio {
	var out []Radio
	for _, r := range a.Radios {
		if r.Service == service {
			out = append(out, r)
		}
	}
	return out
}

func (a *Airfield) String() string {
	return fmt.Sprintf("Airfield(icao=%s, name=%s)", a.ICAO, a.Name)
}

// Runway is one runway strip of its parent airfield. Dimensions are in
// meters regardless of the unit the edition published them in.
type Runway struct {
	// Designator covers both directions, e.g. "08L/26R" or "08/26".
	Designator string `json:"designator"`

	LengthMeters float64 `json:"lengthMeters"`
	WidthMeters  float64 `json:"widthMeters"`

	// Surface is the published surface description, e.g. "Asphalt".
	Surface string `json:"surface"`

	// Headings are the magnetic headings of the two directions in degrees.
	// Derived from the designator when the edition publishes no bearing.
	Headings [2]float64 `json:"headingsDegrees"`
}

func (r Runway) String() string {
	return fmt.Sprintf("Runway(designator=%s, length=%.0fm)", r.Designator, r.LengthMeters)
}

// Radio is one radio communication facility of its parent airfield.
type Radio struct {
	// Service is the facility designation, e.g. "TWR", "GND", "APP".
	Service string `json:"service"`

	// Callsign is the voice callsign, e.g. "Gatwick Tower".
	Callsign string `json:"callsign"`

	// FrequencyMHz is the frequency normalized to MHz.
	FrequencyMHz float64 `json:"frequencyMHz"`
}

func (r Radio) String() string {
	return fmt.Sprintf("Radio(service=%s, callsign=%s, frequency=%.3f)", r.Service, r.Callsign, r.FrequencyMHz)
}
