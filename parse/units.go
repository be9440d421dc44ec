package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Conversions applied once at parse time so every downstream consumer sees
// one canonical unit system: meters, MHz, degrees.

const feetPerMeter = 0.3048

var (
	dimensionsRe = regexp.MustCompile(`(?i)(\d+)\s*[x×]\s*(\d+)\s*(M|FT)\b`)
	frequencyRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(MHZ|KHZ)`)
	bearingRe    = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*°`)
	designatorRe = regexp.MustCompile(`^(\d{2})[LRC]?(?:\s*/\s*(\d{2})[LRC]?)?$`)
)

// parseDimensions extracts runway length and width in meters from a cell
// such as "3316 x 45 M" or "5741 x 148 FT".
func parseDimensions(cell string) (length, width float64, ok bool) {
	m := dimensionsRe.FindStringSubmatch(cell)
	if m == nil {
		return 0, 0, false
	}
	length, _ = strconv.ParseFloat(m[1], 64)
	width, _ = strconv.ParseFloat(m[2], 64)
	if strings.EqualFold(m[3], "FT") {
		length *= feetPerMeter
		width *= feetPerMeter
	}
	return length, width, true
}

// parseFrequencyMHz extracts a frequency in MHz from a cell such as
// "124.230 MHz" or "8638 kHz".
func parseFrequencyMHz(cell string) (float64, bool) {
	m := frequencyRe.FindStringSubmatch(cell)
	if m == nil {
		return 0, false
	}
	f, _ := strconv.ParseFloat(m[1], 64)
	if strings.EqualFold(m[2], "KHZ") {
		f /= 1000
	}
	return f, true
}

// parseBearings extracts up to two published true bearings from a cell such
// as "077°/257°".
func parseBearings(cell string) ([2]float64, bool) {
	m := bearingRe.FindAllStringSubmatch(cell, 2)
	if len(m) == 0 {
		return [2]float64{}, false
	}
	var out [2]float64
	first, _ := strconv.ParseFloat(m[0][1], 64)
	out[0] = first
	if len(m) > 1 {
		second, _ := strconv.ParseFloat(m[1][1], 64)
		out[1] = second
	} else {
		out[1] = opposite(first)
	}
	return out, true
}

// headingsFromDesignator derives the two magnetic headings from a runway
// designator such as "08L/26R", used when no bearing is published.
func headingsFromDesignator(designator string) ([2]float64, bool) {
	m := designatorRe.FindStringSubmatch(strings.TrimSpace(designator))
	if m == nil {
		return [2]float64{}, false
	}
	first, _ := strconv.ParseFloat(m[1], 64)
	first *= 10
	second := opposite(first)
	if m[2] != "" {
		s, _ := strconv.ParseFloat(m[2], 64)
		second = s * 10
	}
	return [2]float64{first, second}, true
}

// isDesignator reports whether a cell looks like a runway designator. Used
// to recognize data rows without counting header rows.
func isDesignator(cell string) bool {
	return designatorRe.MatchString(strings.TrimSpace(cell))
}

func opposite(heading float64) float64 {
	o := heading + 180
	if o >= 360 {
		o -= 360
	}
	return o
}

// dmsToDecimal converts degrees/minutes/seconds with a cardinal direction to
// signed decimal degrees.
func dmsToDecimal(deg, min, sec float64, dir string) float64 {
	v := deg + min/60 + sec/3600
	if dir == "S" || dir == "W" {
		return -v
	}
	return v
}

// titleCase renders an all-caps published name ("GATWICK",
// "BELFAST/ALDERGROVE") in title case. Any non-letter starts a new word, so
// slash-joined names capitalize both parts.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range strings.ToLower(s) {
		isLetter := unicode.IsLetter(r)
		if isLetter && !prevLetter {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevLetter = isLetter
	}
	return b.String()
}
