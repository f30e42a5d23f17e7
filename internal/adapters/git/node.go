package git

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the changed-files discoverer Graft node.
const NodeID graft.ID = "adapter.git"

func init() {
	graft.Register(graft.Node[*ChangedFiles]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*ChangedFiles, error) {
			return NewChangedFiles(), nil
		},
	})
}
