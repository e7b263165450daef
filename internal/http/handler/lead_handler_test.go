package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/arkidots/pipeline-api/internal/http/handler"
	"github.com/arkidots/pipeline-api/internal/store"
)

var handlerTestDay = domain.NewDate(2025, time.May, 1)

func setupLeadRouter(t *testing.T) (*store.LeadStore, http.Handler) {
	t.Helper()
	cfg := &config.PipelineConfig{
		ScheduleSpacingDays:      2,
		DefaultTimelineInterval:  120,
		AllowedTimelineIntervals: []int{15, 30, 60, 120, 240, 480},
	}
	leads := store.NewLeadStore(cfg, nil, zap.NewNop(),
		store.WithNow(func() domain.Date { return handlerTestDay }))

	h := handler.NewLeadHandler(leads, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/leads", func(r chi.Router) {
		r.Get("/", h.ListLeads)
		r.Post("/", h.CreateLead)
		r.Get("/selected", h.SelectedLead)
		r.Get("/{id}", h.GetLead)
		r.Put("/{id}", h.UpdateLead)
		r.Delete("/{id}", h.DeleteLead)
		r.Post("/{id}/select", h.SelectLead)
		r.Put("/{id}/stages/{stageId}", h.UpdateStage)
		r.Put("/{id}/timeline-interval", h.UpdateTimelineInterval)
		r.Get("/{id}/timeline", h.Timeline)
		r.Get("/{id}/milestones", h.Milestones)
		r.Get("/{id}/progress", h.Progress)
	})
	return leads, r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestCreateLead(t *testing.T) {
	_, r := setupLeadRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/leads", domain.CreateLeadRequest{
		CustomerName: "Acme",
		ProjectTitle: "Villa",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	lead := decode[domain.Lead](t, rec)
	assert.Equal(t, "Acme", lead.CustomerName)
	assert.Len(t, lead.Stages, len(domain.DefaultStageTemplate))
	assert.Equal(t, fmt.Sprintf("/api/v1/leads/%s", lead.ID), rec.Header().Get("Location"))
}

func TestCreateLead_Validation(t *testing.T) {
	_, r := setupLeadRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/leads", domain.CreateLeadRequest{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decode[domain.APIError](t, rec)
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "customerName")
}

func TestListLeads_BandQuery(t *testing.T) {
	leads, r := setupLeadRouter(t)
	lead := leads.AddLead(&domain.CreateLeadRequest{CustomerName: "Acme"})

	done := domain.StageDone
	for _, stage := range lead.Stages[:3] {
		_, err := leads.UpdateStage(lead.ID, stage.ID, &domain.UpdateStageRequest{Status: &done})
		require.NoError(t, err)
	}

	rec := doJSON(t, r, http.MethodGet, "/leads?band=high", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := decode[[]domain.LeadSummary](t, rec)
	require.Len(t, summaries, 1)
	assert.Equal(t, 60, summaries[0].Progress)
	assert.Equal(t, domain.BandHigh, summaries[0].Band)

	rec = doJSON(t, r, http.MethodGet, "/leads?band=low", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.LeadSummary](t, rec))

	rec = doJSON(t, r, http.MethodGet, "/leads?band=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLead_NotFound(t *testing.T) {
	_, r := setupLeadRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/leads/6e7c2f4a-9f1b-4c3d-8a5e-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/leads/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectLead_Endpoints(t *testing.T) {
	leads, r := setupLeadRouter(t)
	lead := leads.AddLead(&domain.CreateLeadRequest{CustomerName: "Acme"})

	rec := doJSON(t, r, http.MethodGet, "/leads/selected", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lead.ID, decode[domain.Lead](t, rec).ID)

	// Selecting an unknown id clears the selection
	rec = doJSON(t, r, http.MethodPost, "/leads/6e7c2f4a-9f1b-4c3d-8a5e-000000000000/select", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/leads/selected", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/leads/%s/select", lead.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, lead.ID, decode[domain.Lead](t, rec).ID)
}

func TestUpdateStage_Endpoint(t *testing.T) {
	leads, r := setupLeadRouter(t)
	lead := leads.AddLead(&domain.CreateLeadRequest{CustomerName: "Acme"})
	stageID := lead.Stages[0].ID

	done := domain.StageDone
	rec := doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/leads/%s/stages/%s", lead.ID, stageID),
		domain.UpdateStageRequest{Status: &done})

	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Lead](t, rec)
	stage := updated.StageByID(stageID)
	require.NotNil(t, stage)
	assert.Equal(t, domain.StageDone, stage.Status)
	require.NotNil(t, stage.ActualDate)
	assert.True(t, stage.ActualDate.Equal(handlerTestDay))

	// done -> lost is not a legal transition
	lost := domain.StageLost
	rec = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/leads/%s/stages/%s", lead.ID, stageID),
		domain.UpdateStageRequest{Status: &lost})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateTimelineInterval_Endpoint(t *testing.T) {
	leads, r := setupLeadRouter(t)
	lead := leads.AddLead(&domain.CreateLeadRequest{CustomerName: "Acme"})

	rec := doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/leads/%s/timeline-interval", lead.ID),
		domain.UpdateTimelineIntervalRequest{Minutes: 240})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 240, decode[domain.Lead](t, rec).TimelineInterval)

	rec = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/leads/%s/timeline-interval", lead.ID),
		domain.UpdateTimelineIntervalRequest{Minutes: 45})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDerivedViews_Endpoints(t *testing.T) {
	leads, r := setupLeadRouter(t)
	lead := leads.AddLead(&domain.CreateLeadRequest{CustomerName: "Acme"})

	rec := doJSON(t, r, http.MethodGet, fmt.Sprintf("/leads/%s/timeline", lead.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]domain.TimelineEntry](t, rec)
	assert.Len(t, entries, len(lead.Stages))
	assert.Equal(t, "in 0 days", entries[0].Label)

	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/leads/%s/milestones", lead.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]domain.MilestoneGroup](t, rec)
	require.Len(t, groups, 2)
	assert.Equal(t, "Milestone 1", groups[0].Label)

	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/leads/%s/progress", lead.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode[domain.ProgressResponse](t, rec)
	assert.Equal(t, 0, progress.Progress)
	assert.Equal(t, domain.BandLow, progress.Band)
}

func TestDeleteLead_Endpoint(t *testing.T) {
	leads, r := setupLeadRouter(t)
	lead := leads.AddLead(&domain.CreateLeadRequest{CustomerName: "Acme"})

	rec := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/leads/%s", lead.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, leads.Count())

	rec = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/leads/%s", lead.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
