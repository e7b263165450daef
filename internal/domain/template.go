package domain

import (
	"github.com/google/uuid"
)

// StageTemplate describes one entry of the pipeline definition. The ordered
// template is the static "schema" of the whole pipeline: every new lead gets
// its stages cloned from it, and the list never changes for an existing lead.
// The installation-specific workflow is loaded from a config file; this type
// is what it unmarshals into.
type StageTemplate struct {
	Name      string `json:"name" mapstructure:"name"`
	Notes     string `json:"notes" mapstructure:"notes"`
	Milestone string `json:"milestone" mapstructure:"milestone"`
}

// DefaultStageTemplate is the built-in pipeline used when no template file
// is configured.
var DefaultStageTemplate = []StageTemplate{
	{Name: "Proposal Shared", Milestone: "Milestone 1"},
	{Name: "Proposal Approved", Milestone: "Milestone 1"},
	{Name: "Booking Confirmed", Milestone: "Milestone 2"},
	{Name: "Payment Received", Milestone: "Milestone 2"},
	{Name: "Booking Finalized", Milestone: "Milestone 2"},
}

// BuildStages instantiates the template into a fresh set of stages for a
// lead created on the given date. Stage k is expected spacingDays*k days
// after creation, a fixed linear schedule.
func BuildStages(template []StageTemplate, created Date, spacingDays int) []Stage {
	stages := make([]Stage, len(template))
	for i, t := range template {
		stages[i] = Stage{
			ID:           uuid.New(),
			Name:         t.Name,
			Status:       StagePending,
			Notes:        t.Notes,
			ExpectedDate: created.AddDays(spacingDays * i),
			Order:        i,
			Milestone:    t.Milestone,
		}
	}
	return stages
}
