// Package cache provides the durable, edition-keyed store for raw eAIP
// documents and derived parsed artifacts.
//
// Published editions are immutable, so a stored document is permanently
// valid: there is no expiry and no invalidation. Only the edition listing has
// a freshness window, and that is the resolver's concern, not the store's.
//
// Layout under the cache root:
//
//	<root>/<editionID>/<kind>-<locator>          raw documents
//	<root>/<editionID>/parsed/airfield/<icao>.json  parsed artifacts
//
// Writes are atomic (temp file + rename), so an abandoned operation never
// leaves a torn entry, and concurrent writes to the same key are safe: last
// writer wins with identical content.
package cache
