package parse

import (
	"regexp"
	"strconv"

	"github.com/eaip-lib/eaip"
)

// Section anchors for the AD 2 detail page. Heading text is the stable
// marker; wrapper markup and ids shift between editions.
var (
	anyHeadingRe  = regexp.MustCompile(`(?i)AD\s+2\.\d+`)
	nameHeadingRe = regexp.MustCompile(`(?i)AD\s+2\.1\b`)
	geoHeadingRe  = regexp.MustCompile(`(?i)AD\s+2\.2\b`)
	rwyHeadingRe  = regexp.MustCompile(`(?i)AD\s+2\.12\b`)
	comHeadingRe  = regexp.MustCompile(`(?i)AD\s+2\.18\b`)

	nameRe    = regexp.MustCompile(`[A-Z]{4}\s*[—–-]+\s*([A-Za-z][A-Za-z /'()-]*)`)
	latRe     = regexp.MustCompile(`Lat:?\s*(\d{2})(\d{2})(\d{2}(?:\.\d+)?)\s*([NS])`)
	lonRe     = regexp.MustCompile(`Long:?\s*(\d{3})(\d{2})(\d{2}(?:\.\d+)?)\s*([EW])`)
	surfaceRe = regexp.MustCompile(`(?i)RWY surface:?\s*(.+)`)
)

// ParseAirfieldDetail converts one AD 2 detail document into an Airfield
// scoped to the given edition.
//
// The AD 2.1 name header is mandatory; without it the document is malformed
// and no entity is returned. The geographical data, runway and radio
// sections are optional: a small airfield publishing no radios yields empty
// slices. An Airfield is either fully parsed or not returned at all.
func ParseAirfieldDetail(edition eaip.Edition, body []byte, icao string) (*eaip.Airfield, error) {
	d, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	name, err := parseName(d)
	if err != nil {
		return nil, err
	}

	a := &eaip.Airfield{
		Edition: edition,
		ICAO:    icao,
		Name:    name,
		Runways: []eaip.Runway{},
		Radios:  []eaip.Radio{},
	}

	a.Lat, a.Lon = parseReferencePoint(d)
	a.Runways = parseRunways(d)
	a.Radios = parseRadios(d)
	return a, nil
}

// parseName reads the aerodrome name from the AD 2.1 section, published as
// "EGKK — GATWICK".
func parseName(d *document) (string, error) {
	heading, idx := d.findHeading(nameHeadingRe)
	if heading == nil {
		return "", eaip.NewMalformedDocumentError(eaip.KindAirfieldDetail, "aerodrome name header")
	}

	// The indicator-and-name line may sit in the heading itself or in the
	// section body, depending on edition.
	for _, text := range []string{textOf(heading), d.textAfter(idx, anyHeadingRe)} {
		if m := nameRe.FindStringSubmatch(text); m != nil {
			return titleCase(m[1]), nil
		}
	}
	return "", eaip.NewMalformedDocumentError(eaip.KindAirfieldDetail, "aerodrome name")
}

// parseReferencePoint reads the ARP coordinates from the AD 2.2 table.
// Optional: absent geographical data leaves the zero position.
func parseReferencePoint(d *document) (lat, lon float64) {
	_, idx := d.findHeading(geoHeadingRe)
	if idx < 0 {
		return 0, 0
	}
	table := d.tableAfter(idx, anyHeadingRe)
	if table == nil {
		return 0, 0
	}

	for _, row := range tableRows(table) {
		for _, cell := range row {
			latM := latRe.FindStringSubmatch(cell)
			lonM := lonRe.FindStringSubmatch(cell)
			if latM != nil && lonM != nil {
				lat = dmsToDecimal(num(latM[1]), num(latM[2]), num(latM[3]), latM[4])
				lon = dmsToDecimal(num(lonM[1]), num(lonM[2]), num(lonM[3]), lonM[4])
				return lat, lon
			}
		}
	}
	return 0, 0
}

// parseRunways reads the AD 2.12 physical characteristics table. Data rows
// are recognized by their designator cell, so the number of header rows does
// not matter. Designators are unique within the airfield; repeated rows
// (per-direction entries) merge into one runway.
func parseRunways(d *document) []eaip.Runway {
	runways := []eaip.Runway{}

	_, idx := d.findHeading(rwyHeadingRe)
	if idx < 0 {
		return runways
	}
	table := d.tableAfter(idx, anyHeadingRe)
	if table == nil {
		return runways
	}

	seen := make(map[string]bool)
	for _, row := range tableRows(table) {
		if len(row) == 0 || !isDesignator(row[0]) {
			continue
		}
		designator := collapse(row[0])
		if seen[designator] {
			continue
		}
		seen[designator] = true

		rw := eaip.Runway{Designator: designator}

		if headings, ok := headingsFromDesignator(designator); ok {
			rw.Headings = headings
		}
		for _, cell := range row[1:] {
			if b, ok := parseBearings(cell); ok {
				rw.Headings = b
				break
			}
		}
		for _, cell := range row[1:] {
			if length, width, ok := parseDimensions(cell); ok {
				rw.LengthMeters, rw.WidthMeters = length, width
				break
			}
		}
		for _, cell := range row[1:] {
			if m := surfaceRe.FindStringSubmatch(cell); m != nil {
				rw.Surface = collapse(m[1])
				break
			}
		}

		runways = append(runways, rw)
	}
	return runways
}

// parseRadios reads the AD 2.18 ATS communication facilities table. Service
// designation and callsign cells are blank on continuation rows and carry
// forward, matching the published layout. Rows without a frequency are
// remarks and are skipped.
func parseRadios(d *document) []eaip.Radio {
	radios := []eaip.Radio{}

	_, idx := d.findHeading(comHeadingRe)
	if idx < 0 {
		return radios
	}
	table := d.tableAfter(idx, anyHeadingRe)
	if table == nil {
		return radios
	}

	var service, callsign string
	for _, row := range tableRows(table) {
		if len(row) < 3 {
			continue
		}
		if s := collapse(row[0]); s != "" {
			service = s
		}
		if c := collapse(row[1]); c != "" {
			callsign = c
		}

		freq, ok := parseFrequencyMHz(row[2])
		if !ok || service == "" {
			continue
		}
		// Header rows name the columns but never carry a frequency, so they
		// fall out here naturally.
		radios = append(radios, eaip.Radio{
			Service:      service,
			Callsign:     callsign,
			FrequencyMHz: freq,
		})
	}
	return radios
}

func num(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
