// Package migration upgrades pipeline documents written by older editors to
// flow.CurrentVersion.
//
// The chain is straight-line: every step whose version is above the
// document's version is applied in order. Migration works on the decoded
// JSON map, not the typed flow model, because old documents use field names
// the model no longer has.
package migration
