package domain

import "errors"

var (
	// ErrNoExtractableText is returned when a document yields no text to segment.
	ErrNoExtractableText = errors.New("document has no extractable text")

	// ErrEmbeddingFailed marks a failed call to the embedding service.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrCompletionFailed marks a failed call to the completion service.
	ErrCompletionFailed = errors.New("completion failed")

	// ErrUnsupportedFormat is returned for files the extractor cannot read.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
