package core

import "errors"

// Failure taxonomy. Callers pick recovery by errors.Is: long-term write
// failures are swallowed, retrieval failures degrade to empty results,
// generation failures fall back to a static response, budget overflow is
// surfaced to the user, configuration errors are fatal at startup.
var (
	ErrStoreUnavailable = errors.New("vector store unavailable")
	ErrEmbeddingFailed  = errors.New("embedding failed")
	ErrGenerationFailed = errors.New("generation failed")
	ErrBudgetExceeded   = errors.New("prompt budget exceeded")
	ErrConfiguration    = errors.New("invalid configuration")
)
