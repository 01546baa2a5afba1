// Package chunk splits documents into fixed-size character windows for ingestion.
//
// Windows are measured in runes so multi-byte text is never cut inside a
// character, and concatenating the windows always reproduces the input.
package chunk
