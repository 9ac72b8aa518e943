package actionqueue

import (
	"context"

	"github.com/google/uuid"
)

// SnapshotRepository loads one consistent Snapshot of the entities that feed
// the queue. Implementations read all three entity sets inside a single
// transaction so the queue never mixes states from different points in time.
type SnapshotRepository interface {
	// LoadAll reads every organization's contributing entities.
	LoadAll(ctx context.Context) (Snapshot, error)

	// LoadForOrg reads one organization's contributing entities with draft
	// invoices excluded, matching what an external caller may see.
	LoadForOrg(ctx context.Context, orgID uuid.UUID) (Snapshot, error)
}
