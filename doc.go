// Package eaip resolves, retrieves, caches and parses published editions of
// the UK electronic Aeronautical Information Publication (eAIP), exposing the
// contained airfields, runways and radio frequencies through a uniform query
// API.
//
// Editions are immutable dated snapshots published on the AIRAC cycle. The
// library maps a request ("latest" or "as of date D") to one concrete edition,
// downloads each document of that edition at most once, persists it in a
// file-system cache keyed by edition, and parses the semi-structured HTML into
// typed entities.
//
// # Quick Start
//
// The façade lives in the query subpackage; this package holds the shared
// types, options and error taxonomy.
//
//	client, err := query.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	airfield, err := client.GetAirfield(ctx, "EGKK", eaip.Latest())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(airfield.Name)
//
// Iterate over every airfield in an edition, lazily and in index order:
//
//	for res := range client.AirfieldStream(ctx, eaip.Latest()) {
//	    if res.Err != nil {
//	        log.Printf("%s: %v", res.ICAO, res.Err)
//	        continue
//	    }
//	    fmt.Println(res.Airfield.ICAO, res.Airfield.Name)
//	}
//
// # Functional Options
//
//	client, err := query.New(
//	    eaip.WithCacheDir("/var/cache/eaip"),
//	    eaip.WithBaseURL("https://www.aurora.nats.co.uk/htmlAIP/Publications"),
//	    eaip.WithLogger(logger),
//	    eaip.WithRetryMax(4),
//	)
//
// # Architecture
//
// The client composes small packages, each owning one concern:
//
//   - cache: durable edition-keyed document and artifact store
//   - fetch: cache-first HTTP retrieval with retry, backoff and dedup
//   - resolve: edition listing discovery and date resolution
//   - parse: anchor-based HTML parsing into domain entities
//   - repo: per-edition lazy entity index
//   - query: the façade Client tying the layers together
//
// Errors carry their class end to end: a flaky remote surfaces as a
// NetworkError, a document the edition never published as ErrNotFound, a
// structurally broken document as a MalformedDocumentError, and a code absent
// from an edition's index as ErrUnknownAirfield. See errors.go.
package eaip
