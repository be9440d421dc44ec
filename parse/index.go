package parse

import (
	"regexp"

	"github.com/eaip-lib/eaip"
)

// indexContainerID anchors the airfield menu across editions. The AD 2
// details block has carried this id in every published edition.
const indexContainerID = "AD-2details"

var (
	icaoRe       = regexp.MustCompile(`\b([A-Z]{4})\b`)
	icaoInAttrRe = regexp.MustCompile(`([A-Z]{4})plus`)
)

// IndexEntry is one airfield listed in an edition's index document: its ICAO
// code and the edition-relative locator of its detail document.
type IndexEntry struct {
	ICAO    string
	Locator string
}

// ParseIndex extracts the airfields from an edition's index document, in
// listing order. The index container is a mandatory anchor: its absence
// means the document is malformed, not that the edition has no airfields.
func ParseIndex(body []byte) ([]IndexEntry, error) {
	d, err := newDocument(body)
	if err != nil {
		return nil, err
	}

	container := d.findByID(indexContainerID)
	if container == nil {
		return nil, eaip.NewMalformedDocumentError(eaip.KindAirfieldIndex, "airfield index container")
	}

	seen := make(map[string]bool)
	var entries []IndexEntry
	for _, a := range anchorsWithin(container) {
		icao := icaoFromAnchor(textOf(a), attrOf(a, "id"))
		if icao == "" || seen[icao] {
			continue
		}
		seen[icao] = true
		entries = append(entries, IndexEntry{ICAO: icao, Locator: attrOf(a, "href")})
	}
	return entries, nil
}

// icaoFromAnchor pulls the ICAO code out of a menu entry, preferring the
// visible text and falling back to the legacy "...EGKKplus" id form.
func icaoFromAnchor(text, id string) string {
	if m := icaoRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := icaoInAttrRe.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	return ""
}
