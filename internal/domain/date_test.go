package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkidots/pipeline-api/internal/domain"
)

func TestDate_DaysUntil(t *testing.T) {
	a := domain.NewDate(2025, time.January, 10)
	b := domain.NewDate(2025, time.January, 15)

	assert.Equal(t, 5, a.DaysUntil(b))
	assert.Equal(t, -5, b.DaysUntil(a))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestDate_AddDays(t *testing.T) {
	d := domain.NewDate(2025, time.January, 30)
	assert.Equal(t, "2025-02-01", d.AddDays(2).String())
	assert.Equal(t, "2025-01-28", d.AddDays(-2).String())
}

func TestDate_JSON(t *testing.T) {
	d := domain.NewDate(2025, time.June, 3)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-03"`, string(data))

	var parsed domain.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-03"`), &parsed))
	assert.True(t, d.Equal(parsed))

	// Empty string decodes to the zero date, mirroring the unscheduled case
	var zero domain.Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &zero))
	assert.True(t, zero.IsZero())

	var bad domain.Date
	assert.Error(t, json.Unmarshal([]byte(`"03/06/2025"`), &bad))
}

func TestBuildStages_LinearSchedule(t *testing.T) {
	created := domain.NewDate(2025, time.April, 1)
	template := []domain.StageTemplate{
		{Name: "one", Milestone: "Milestone 1"},
		{Name: "two", Milestone: "Milestone 1"},
		{Name: "three", Milestone: "Milestone 2"},
	}

	stages := domain.BuildStages(template, created, 2)

	require.Len(t, stages, 3)
	for i, s := range stages {
		assert.Equal(t, domain.StagePending, s.Status)
		assert.Equal(t, i, s.Order)
		assert.Equal(t, created.AddDays(2*i), s.ExpectedDate)
		assert.Nil(t, s.ActualDate)
		assert.NotEqual(t, s.ID.String(), "00000000-0000-0000-0000-000000000000")
	}
	assert.Equal(t, "2025-04-05", stages[2].ExpectedDate.String())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.StageStatus
		allowed  bool
	}{
		{domain.StagePending, domain.StageDone, true},
		{domain.StagePending, domain.StageLost, true},
		{domain.StageDone, domain.StagePending, true},
		{domain.StageLost, domain.StagePending, true},
		{domain.StageDone, domain.StageLost, false},
		{domain.StageLost, domain.StageDone, false},
		{domain.StagePending, domain.StagePending, true},
		{domain.StageDone, domain.StageDone, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, domain.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
