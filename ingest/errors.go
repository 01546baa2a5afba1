package ingest

import "errors"

var (
	// ErrInserterRequired is returned when no inserter is provided.
	ErrInserterRequired = errors.New("inserter required")

	// ErrFileNotFound is returned when the input file does not exist.
	ErrFileNotFound = errors.New("input file not found")

	// ErrEmptyInput is returned when the input holds nothing but whitespace.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInvalidText is returned when a text file is not valid UTF-8.
	ErrInvalidText = errors.New("input is not valid UTF-8")

	// ErrNoMatches is returned when a glob matches no files.
	ErrNoMatches = errors.New("no files matched")
)
