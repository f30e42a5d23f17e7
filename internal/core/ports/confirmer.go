package ports

import "context"

// Confirmer asks the user a yes/no question.
//
//go:generate mockgen -source=confirmer.go -destination=mocks/mock_confirmer.go -package=mocks
type Confirmer interface {
	// Confirm returns true only on an explicit yes.
	Confirm(ctx context.Context, prompt string) (bool, error)
}
