package lexgov

import "errors"

var (
	// ErrChunkNotFound is returned when a chunk ID does not exist.
	ErrChunkNotFound = errors.New("lexgov: chunk not found")

	// ErrUnsupportedFormat is returned for unrecognized file formats.
	ErrUnsupportedFormat = errors.New("lexgov: unsupported document format")

	// ErrParsingFailed is returned when document parsing fails.
	ErrParsingFailed = errors.New("lexgov: parsing failed")

	// ErrEmbeddingFailed is returned when embedding generation fails.
	ErrEmbeddingFailed = errors.New("lexgov: embedding generation failed")

	// ErrIntegrity is returned when persisted state fails a consistency
	// check, such as mismatched vector index artifacts.
	ErrIntegrity = errors.New("lexgov: integrity violation")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("lexgov: invalid configuration")
)
