package ports

import (
	"context"

	"go.trai.ch/polish/internal/core/domain"
)

// DocumentStore reads and persists the text of work items.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type DocumentStore interface {
	// Read returns the current text of the item.
	Read(ctx context.Context, item domain.WorkItem) (string, error)

	// Persist replaces the item's text.
	Persist(ctx context.Context, item domain.WorkItem, text string) error
}
