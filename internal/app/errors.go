package app

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrEmbeddingUnavailable  = errors.New("embedding unavailable")
	ErrStoreUnavailable      = errors.New("vector store unavailable")
	ErrGenerationUnavailable = errors.New("generation unavailable")
)
