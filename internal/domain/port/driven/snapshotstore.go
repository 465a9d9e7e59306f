package driven

import (
	"context"

	"github.com/ericfisherdev/fixtrace/internal/domain/model"
)

// SnapshotStore defines the driven port for the local metrics snapshot
// archive. The archive is a convenience for trend charts; the trace store
// remains the source of truth and is never written by this service.
type SnapshotStore interface {
	// Archive persists one metrics snapshot.
	Archive(ctx context.Context, m model.BotMetrics) error
	// History returns archived snapshots ordered oldest first, at most limit
	// rows (limit <= 0 means no cap).
	History(ctx context.Context, limit int) ([]model.BotMetrics, error)
	// Latest returns the most recently archived snapshot, or nil when the
	// archive is empty.
	Latest(ctx context.Context) (*model.BotMetrics, error)
}
