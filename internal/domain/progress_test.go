package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arkidots/pipeline-api/internal/domain"
)

func leadWithStatuses(statuses ...domain.StageStatus) *domain.Lead {
	stages := make([]domain.Stage, len(statuses))
	for i, st := range statuses {
		stages[i] = domain.Stage{Status: st, Order: i}
	}
	return &domain.Lead{Stages: stages}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.StageStatus
		expected int
	}{
		{
			name:     "no stages",
			statuses: nil,
			expected: 0,
		},
		{
			name:     "none done",
			statuses: []domain.StageStatus{domain.StagePending, domain.StagePending},
			expected: 0,
		},
		{
			name:     "all done",
			statuses: []domain.StageStatus{domain.StageDone, domain.StageDone},
			expected: 100,
		},
		{
			name:     "two of five done",
			statuses: []domain.StageStatus{domain.StageDone, domain.StageDone, domain.StagePending, domain.StagePending, domain.StagePending},
			expected: 40,
		},
		{
			name:     "one of three rounds to 33",
			statuses: []domain.StageStatus{domain.StageDone, domain.StagePending, domain.StagePending},
			expected: 33,
		},
		{
			name:     "two of three rounds to 67",
			statuses: []domain.StageStatus{domain.StageDone, domain.StageDone, domain.StagePending},
			expected: 67,
		},
		{
			name:     "lost stages count as not done",
			statuses: []domain.StageStatus{domain.StageDone, domain.StageLost},
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.Progress(leadWithStatuses(tt.statuses...)))
		})
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		progress int
		expected domain.ProgressBand
	}{
		{0, domain.BandLow},
		{9, domain.BandLow},
		{10, domain.BandMid},
		{49, domain.BandMid},
		{50, domain.BandHigh},
		{100, domain.BandHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, domain.BandOf(tt.progress), "progress %d", tt.progress)
	}
}

func TestMilestoneGroups_Ordering(t *testing.T) {
	lead := &domain.Lead{Stages: []domain.Stage{
		{Name: "a", Milestone: "Milestone 10", Order: 0},
		{Name: "b", Milestone: "", Order: 1},
		{Name: "c", Milestone: "Milestone 2", Order: 2},
		{Name: "d", Milestone: "Wrap-up", Order: 3},
		{Name: "e", Milestone: "Milestone 2", Order: 4},
		{Name: "f", Milestone: "Handover", Order: 5},
	}}

	groups := domain.MilestoneGroups(lead)

	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
	}

	// Numeric labels ascending, other labels alphabetically, "No Milestone" last
	assert.Equal(t, []string{"Milestone 2", "Milestone 10", "Handover", "Wrap-up", domain.NoMilestoneLabel}, labels)
}

func TestMilestoneGroups_StagesKeepPipelineOrder(t *testing.T) {
	lead := &domain.Lead{Stages: []domain.Stage{
		{Name: "later", Milestone: "Milestone 1", Order: 3},
		{Name: "earlier", Milestone: "Milestone 1", Order: 1},
	}}

	groups := domain.MilestoneGroups(lead)
	assert.Len(t, groups, 1)
	assert.Equal(t, "earlier", groups[0].Stages[0].Name)
	assert.Equal(t, "later", groups[0].Stages[1].Name)
}

func TestMilestoneGroups_PerGroupProgress(t *testing.T) {
	lead := &domain.Lead{Stages: []domain.Stage{
		{Milestone: "Milestone 1", Status: domain.StageDone, Order: 0},
		{Milestone: "Milestone 1", Status: domain.StagePending, Order: 1},
		{Milestone: "Milestone 2", Status: domain.StagePending, Order: 2},
	}}

	groups := domain.MilestoneGroups(lead)
	assert.Len(t, groups, 2)
	assert.Equal(t, 50, groups[0].Progress)
	assert.Equal(t, 0, groups[1].Progress)
}

func TestMilestoneGroups_EveryStageInExactlyOneGroup(t *testing.T) {
	lead := &domain.Lead{Stages: []domain.Stage{
		{Name: "a", Milestone: "Milestone 1", Order: 0},
		{Name: "b", Milestone: "", Order: 1},
		{Name: "c", Milestone: "Milestone 1", Order: 2},
	}}

	groups := domain.MilestoneGroups(lead)
	total := 0
	for _, g := range groups {
		total += len(g.Stages)
	}
	assert.Equal(t, len(lead.Stages), total)
}
