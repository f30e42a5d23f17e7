package ports

import (
	"context"

	"go.trai.ch/polish/internal/core/domain"
)

// Discoverer enumerates the candidate items of a bulk sweep.
//
//go:generate mockgen -source=discoverer.go -destination=mocks/mock_discoverer.go -package=mocks
type Discoverer interface {
	// Discover returns the supported files under root.
	Discover(ctx context.Context, root string, ignore []string) ([]domain.WorkItem, error)
}
