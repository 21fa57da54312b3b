package core

import "context"

// Embedder maps text to a fixed-length vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Generator is the opaque text-generation capability. The engine never
// inspects the model; it sends an assembled prompt and gets text back.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Classifier scores a piece of text for crisis risk. Implementations:
// keyword-rule matching, ML-scored variants. Polarity-only classifiers
// must never return RiskHigh.
type Classifier interface {
	Classify(text string) SafetyVerdict
}
