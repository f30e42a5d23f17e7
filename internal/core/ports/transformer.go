package ports

import (
	"context"

	"go.trai.ch/polish/internal/core/domain"
)

// Transformer runs the format-then-lint pipeline over a document's text.
//
//go:generate mockgen -source=transformer.go -destination=mocks/mock_transformer.go -package=mocks
type Transformer interface {
	// Transform returns the transformed text for item.
	Transform(ctx context.Context, text string, item domain.WorkItem) (string, error)
}
