// Package ingest feeds documents to the retrieval engine.
//
// A Driver reads a file (plain text, Markdown or PDF), trims it, splits it into
// fixed-size rune windows and submits the windows one at a time. A chunk that
// fails is logged and skipped; it is never retried. A short pause follows each
// successful insert to keep load on the model server steady.
package ingest
