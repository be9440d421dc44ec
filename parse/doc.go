// Package parse converts raw eAIP HTML documents into typed entities.
//
// eAIP markup varies between editions: attribute order, whitespace, wrapper
// elements and optional sections all shift. The parser therefore never relies
// on positional offsets. Sections are located by stable semantic anchors --
// the "AD 2.n" heading numbers and their captions -- and table cells are read
// by content pattern, not column arithmetic.
//
// A document missing a mandatory anchor (the aerodrome name header, the
// airfield index container) fails with a MalformedDocumentError. A missing
// optional section (a small airfield with no published radios) is an empty
// slice, not an error.
//
// Numeric fields are normalized once at parse time: runway dimensions to
// meters, frequencies to MHz, headings to degrees.
package parse
