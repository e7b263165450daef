package jobs

import (
	"github.com/arkidots/pipeline-api/internal/store"
	"go.uber.org/zap"
)

// OverdueReportJobName is the name of the daily overdue stage report job
const OverdueReportJobName = "overdue_report"

// DefaultOverdueReportCron runs the report every morning at 07:00.
const DefaultOverdueReportCron = "0 7 * * *"

// OverdueReportJob logs a summary of pending stages that have slipped past
// their expected date, per lead. It is a server-side counterpart of the
// timeline view's lateness classification.
type OverdueReportJob struct {
	leads  *store.LeadStore
	logger *zap.Logger
}

// NewOverdueReportJob creates the overdue report job.
func NewOverdueReportJob(leads *store.LeadStore, logger *zap.Logger) *OverdueReportJob {
	return &OverdueReportJob{leads: leads, logger: logger}
}

// Run computes and logs the overdue report.
func (j *OverdueReportJob) Run() {
	overdue := j.leads.OverdueStages()
	if len(overdue) == 0 {
		j.logger.Info("overdue report: no overdue stages")
		return
	}

	total := 0
	for leadID, entries := range overdue {
		total += len(entries)
		worst := 0
		for _, e := range entries {
			if e.Days > worst {
				worst = e.Days
			}
		}
		j.logger.Warn("lead has overdue stages",
			zap.String("lead_id", leadID.String()),
			zap.Int("overdue_stages", len(entries)),
			zap.Int("max_days_late", worst),
		)
	}

	j.logger.Info("overdue report complete",
		zap.Int("leads_affected", len(overdue)),
		zap.Int("total_overdue_stages", total),
	)
}

// RegisterOverdueReportJob adds the overdue report job to the scheduler.
func RegisterOverdueReportJob(s *Scheduler, job *OverdueReportJob, cronExpr string) error {
	if cronExpr == "" {
		cronExpr = DefaultOverdueReportCron
	}
	return s.AddJob(OverdueReportJobName, cronExpr, job.Run)
}
