package snapshot_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/arkidots/pipeline-api/internal/snapshot"
)

func openTestStore(t *testing.T) *snapshot.Store {
	t.Helper()
	store, err := snapshot.Open(filepath.Join(t.TempDir(), "snapshot.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleLead() *domain.Lead {
	created := domain.NewDate(2025, time.February, 1)
	actual := domain.NewDate(2025, time.February, 3)
	return &domain.Lead{
		ID:           uuid.New(),
		CustomerName: "Acme",
		PhoneNumber:  "12345678",
		Email:        "lead@example.com",
		ProjectTitle: "Villa",
		Location:     "Oslo",
		CreatedAt:    created,
		Stages: []domain.Stage{
			{
				ID:           uuid.New(),
				Name:         "Proposal Shared",
				Status:       domain.StageDone,
				ExpectedDate: created,
				ActualDate:   &actual,
				Order:        0,
				Milestone:    "Milestone 1",
			},
			{
				ID:           uuid.New(),
				Name:         "Proposal Approved",
				Status:       domain.StagePending,
				Notes:        "Internal",
				ExpectedDate: created.AddDays(2),
				Order:        1,
				Milestone:    "Milestone 1",
			},
		},
		TimelineInterval: 120,
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	lead := sampleLead()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		Role:         domain.RoleAdmin,
		PasswordHash: []byte("$2a$10$fakehashforthetest"),
	}

	require.NoError(t, store.Save([]*domain.Lead{lead}, lead.ID, []*domain.User{user}))

	leads, selected, users, err := store.Load()
	require.NoError(t, err)

	require.Len(t, leads, 1)
	got := leads[0]
	assert.Equal(t, lead.ID, got.ID)
	assert.Equal(t, lead.CustomerName, got.CustomerName)
	assert.True(t, lead.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, lead.TimelineInterval, got.TimelineInterval)
	assert.Equal(t, lead.ID, selected)

	require.Len(t, got.Stages, 2)
	assert.Equal(t, "Proposal Shared", got.Stages[0].Name)
	assert.Equal(t, domain.StageDone, got.Stages[0].Status)
	require.NotNil(t, got.Stages[0].ActualDate)
	assert.True(t, lead.Stages[0].ActualDate.Equal(*got.Stages[0].ActualDate))
	assert.Nil(t, got.Stages[1].ActualDate)
	assert.Equal(t, "Internal", got.Stages[1].Notes)

	require.Len(t, users, 1)
	assert.Equal(t, user.Email, users[0].Email)
	assert.Equal(t, user.PasswordHash, users[0].PasswordHash)
}

func TestSnapshot_SaveReplacesPreviousState(t *testing.T) {
	store := openTestStore(t)
	first := sampleLead()
	second := sampleLead()
	second.CustomerName = "Replacement"

	require.NoError(t, store.Save([]*domain.Lead{first}, first.ID, nil))
	require.NoError(t, store.Save([]*domain.Lead{second}, uuid.Nil, nil))

	leads, selected, users, err := store.Load()
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Replacement", leads[0].CustomerName)
	assert.Equal(t, uuid.Nil, selected)
	assert.Empty(t, users)
}

func TestSnapshot_PreservesInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	a := sampleLead()
	a.CustomerName = "A"
	b := sampleLead()
	b.CustomerName = "B"
	c := sampleLead()
	c.CustomerName = "C"

	require.NoError(t, store.Save([]*domain.Lead{a, b, c}, uuid.Nil, nil))

	leads, _, _, err := store.Load()
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "A", leads[0].CustomerName)
	assert.Equal(t, "B", leads[1].CustomerName)
	assert.Equal(t, "C", leads[2].CustomerName)
}

func TestSnapshot_EmptyDatabase(t *testing.T) {
	store := openTestStore(t)

	leads, selected, users, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.Equal(t, uuid.Nil, selected)
	assert.Empty(t, users)
}
