package jobs

import (
	"github.com/arkidots/pipeline-api/internal/snapshot"
	"github.com/arkidots/pipeline-api/internal/store"
	"go.uber.org/zap"
)

// SnapshotJobName is the name of the periodic state snapshot job
const SnapshotJobName = "state_snapshot"

// SnapshotJob periodically persists the in-memory stores to the snapshot
// database.
type SnapshotJob struct {
	leads    *store.LeadStore
	identity *store.IdentityStore
	snap     *snapshot.Store
	logger   *zap.Logger
}

// NewSnapshotJob creates the snapshot job.
func NewSnapshotJob(leads *store.LeadStore, identity *store.IdentityStore, snap *snapshot.Store, logger *zap.Logger) *SnapshotJob {
	return &SnapshotJob{
		leads:    leads,
		identity: identity,
		snap:     snap,
		logger:   logger,
	}
}

// Run exports the full state and writes it to the snapshot database.
func (j *SnapshotJob) Run() {
	leads, selected := j.leads.Export()
	users := j.identity.Export()

	if err := j.snap.Save(leads, selected, users); err != nil {
		j.logger.Error("state snapshot failed", zap.Error(err))
		return
	}

	j.logger.Info("state snapshot written",
		zap.Int("leads", len(leads)),
		zap.Int("users", len(users)),
	)
}

// RegisterSnapshotJob adds the snapshot job to the scheduler.
func RegisterSnapshotJob(s *Scheduler, job *SnapshotJob, cronExpr string) error {
	return s.AddJob(SnapshotJobName, cronExpr, job.Run)
}
