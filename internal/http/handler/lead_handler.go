package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/arkidots/pipeline-api/internal/http/middleware"
	"github.com/arkidots/pipeline-api/internal/store"
)

// LeadHandler handles HTTP requests for leads and their derived views
type LeadHandler struct {
	leads  *store.LeadStore
	logger *zap.Logger
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leads *store.LeadStore, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leads:  leads,
		logger: logger,
	}
}

// ListLeads godoc
// @Summary List leads
// @Description Get lead summaries with optional search and progress band filters
// @Tags Leads
// @Produce json
// @Param search query string false "Search by customer name, project title or location"
// @Param band query string false "Filter by progress band" Enums(high, mid, low)
// @Success 200 {array} domain.LeadSummary
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	var band *domain.ProgressBand
	if b := r.URL.Query().Get("band"); b != "" {
		pb := domain.ProgressBand(b)
		if !pb.Valid() {
			respondWithError(w, http.StatusBadRequest, "Invalid band: must be one of high, mid, low")
			return
		}
		band = &pb
	}

	leads := h.leads.ListLeads(r.URL.Query().Get("search"), band)

	summaries := make([]domain.LeadSummary, 0, len(leads))
	for _, l := range leads {
		p := domain.Progress(l)
		summaries = append(summaries, domain.LeadSummary{
			ID:           l.ID.String(),
			CustomerName: l.CustomerName,
			ProjectTitle: l.ProjectTitle,
			Location:     l.Location,
			CreatedAt:    l.CreatedAt,
			Progress:     p,
			Band:         domain.BandOf(p),
		})
	}

	respondJSON(w, http.StatusOK, summaries)
}

// CreateLead godoc
// @Summary Create a lead
// @Description Creates a lead with the full stage schedule derived from the configured template
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Contact details"
// @Success 201 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead := h.leads.AddLead(&req)
	middleware.RecordLeadMutation("create")

	h.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("customer_name", lead.CustomerName),
		zap.Int("stages", len(lead.Stages)),
	)

	w.Header().Set("Location", fmt.Sprintf("/api/v1/leads/%s", lead.ID))
	respondJSON(w, http.StatusCreated, lead)
}

// GetLead godoc
// @Summary Get a lead by ID
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.Lead
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	lead, err := h.leads.GetLead(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Lead not found")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// UpdateLead godoc
// @Summary Update a lead's contact fields
// @Description Updates only the fields present in the request body. Stages and creation date are immutable here.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadRequest true "Fields to update"
// @Success 200 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leads.UpdateLead(id, &req)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Lead not found")
		return
	}
	middleware.RecordLeadMutation("update")

	respondJSON(w, http.StatusOK, lead)
}

// DeleteLead godoc
// @Summary Delete a lead
// @Description Removes the lead. If it was selected, selection moves to the first remaining lead.
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id} [delete]
func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	if err := h.leads.DeleteLead(id); err != nil {
		respondWithError(w, http.StatusNotFound, "Lead not found")
		return
	}
	middleware.RecordLeadMutation("delete")

	h.logger.Info("lead deleted", zap.String("lead_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// SelectLead godoc
// @Summary Select a lead
// @Description Makes the lead the current selection. An unknown ID clears the selection and returns 204.
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.Lead
// @Success 204
// @Security BearerAuth
// @Router /leads/{id}/select [post]
func (h *LeadHandler) SelectLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	lead := h.leads.SelectLead(id)
	if lead == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// SelectedLead godoc
// @Summary Get the currently selected lead
// @Tags Leads
// @Produce json
// @Success 200 {object} domain.Lead
// @Success 204
// @Security BearerAuth
// @Router /leads/selected [get]
func (h *LeadHandler) SelectedLead(w http.ResponseWriter, r *http.Request) {
	lead := h.leads.Selected()
	if lead == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// UpdateStage godoc
// @Summary Update a stage within a lead
// @Description Applies a partial stage update. Status changes follow the pending/done/lost transition rules.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param stageId path string true "Stage ID"
// @Param request body domain.UpdateStageRequest true "Fields to update"
// @Success 200 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/stages/{stageId} [put]
func (h *LeadHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	stageID, err := uuid.Parse(chi.URLParam(r, "stageId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid stage ID")
		return
	}

	var req domain.UpdateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leads.UpdateStage(id, stageID, &req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrLeadNotFound):
			respondWithError(w, http.StatusNotFound, "Lead not found")
		case errors.Is(err, store.ErrStageNotFound):
			respondWithError(w, http.StatusNotFound, "Stage not found")
		case errors.Is(err, store.ErrInvalidTransition):
			respondWithError(w, http.StatusConflict, "Invalid status transition")
		default:
			h.logger.Error("failed to update stage", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update stage")
		}
		return
	}

	if req.Status != nil {
		middleware.RecordStageTransition(string(*req.Status))
	}

	respondJSON(w, http.StatusOK, lead)
}

// UpdateTimelineInterval godoc
// @Summary Set a lead's timeline interval
// @Description Sets the minute granularity of the lead's timeline axis. Allowed values are configured server-side.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateTimelineIntervalRequest true "Interval in minutes"
// @Success 200 {object} domain.Lead
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/timeline-interval [put]
func (h *LeadHandler) UpdateTimelineInterval(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateTimelineIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leads.UpdateTimelineInterval(id, req.Minutes)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrLeadNotFound):
			respondWithError(w, http.StatusNotFound, "Lead not found")
		case errors.Is(err, store.ErrInvalidInterval):
			respondWithError(w, http.StatusBadRequest, "Interval is not one of the allowed values")
		default:
			h.logger.Error("failed to update timeline interval", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update timeline interval")
		}
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// Timeline godoc
// @Summary Get a lead's schedule timeline
// @Description Stages ordered by position with schedule state and lateness labels relative to today
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} domain.TimelineEntry
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/timeline [get]
func (h *LeadHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	entries, err := h.leads.Timeline(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Lead not found")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// Milestones godoc
// @Summary Get a lead's stages grouped by milestone
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {array} domain.MilestoneGroup
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/milestones [get]
func (h *LeadHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	groups, err := h.leads.Milestones(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Lead not found")
		return
	}

	respondJSON(w, http.StatusOK, groups)
}

// Progress godoc
// @Summary Get a lead's progress percentage and band
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.ProgressResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/progress [get]
func (h *LeadHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseLeadID(w, r)
	if !ok {
		return
	}

	progress, err := h.leads.Progress(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Lead not found")
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

func (h *LeadHandler) parseLeadID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return uuid.Nil, false
	}
	return id, true
}
