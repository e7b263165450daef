package store

import (
	"strings"
	"sync"

	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadStore is the in-memory state container for the lead pipeline. All
// commands are synchronous read-modify-write transitions under one lock, so
// a reader can never observe the collection and the selection out of step.
//
// The selection is held as an id and resolved against the collection on
// every read: it is always either nil or a lead currently present.
type LeadStore struct {
	mu       sync.RWMutex
	cfg      *config.PipelineConfig
	template []domain.StageTemplate
	logger   *zap.Logger
	now      func() domain.Date

	leads      []*domain.Lead
	selectedID uuid.UUID
}

// LeadStoreOption configures a LeadStore.
type LeadStoreOption func(*LeadStore)

// WithNow overrides the store's clock. Used by tests to pin the calendar.
func WithNow(now func() domain.Date) LeadStoreOption {
	return func(s *LeadStore) { s.now = now }
}

// NewLeadStore creates a lead store using the given pipeline configuration
// and stage template. An empty template falls back to the built-in default
// so progress can never divide by zero.
func NewLeadStore(cfg *config.PipelineConfig, template []domain.StageTemplate, logger *zap.Logger, opts ...LeadStoreOption) *LeadStore {
	if len(template) == 0 {
		template = domain.DefaultStageTemplate
	}
	s := &LeadStore{
		cfg:      cfg,
		template: template,
		logger:   logger,
		now:      domain.Today,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddLead creates a lead from the contact fields, instantiates its stages
// from the template with the linear expected-date schedule, and makes it
// the current selection.
func (s *LeadStore) AddLead(req *domain.CreateLeadRequest) *domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now()
	lead := &domain.Lead{
		ID:               uuid.New(),
		CustomerName:     req.CustomerName,
		PhoneNumber:      req.PhoneNumber,
		Email:            req.Email,
		ProjectTitle:     req.ProjectTitle,
		Location:         req.Location,
		CreatedAt:        today,
		Stages:           domain.BuildStages(s.template, today, s.cfg.ScheduleSpacingDays),
		TimelineInterval: s.cfg.DefaultTimelineInterval,
	}

	s.leads = append(s.leads, lead)
	s.selectedID = lead.ID

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("customer", lead.CustomerName),
		zap.Int("stages", len(lead.Stages)),
	)

	return lead.Clone()
}

// GetLead returns a copy of the lead with the given id.
func (s *LeadStore) GetLead(id uuid.UUID) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead := s.find(id)
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	return lead.Clone(), nil
}

// ListLeads returns copies of all leads matching the filters, in insertion
// order. The search term matches customer name, project title or location
// case-insensitively; the band filter keeps leads whose derived progress
// falls in the given band.
func (s *LeadStore) ListLeads(search string, band *domain.ProgressBand) []*domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]*domain.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if term != "" && !matchesSearch(lead, term) {
			continue
		}
		if band != nil && domain.BandOf(domain.Progress(lead)) != *band {
			continue
		}
		out = append(out, lead.Clone())
	}
	return out
}

func matchesSearch(lead *domain.Lead, term string) bool {
	return strings.Contains(strings.ToLower(lead.CustomerName), term) ||
		strings.Contains(strings.ToLower(lead.ProjectTitle), term) ||
		strings.Contains(strings.ToLower(lead.Location), term)
}

// SelectLead sets the selection to the lead with the given id, or clears
// it when no such lead exists. Selecting an unknown id is not an error;
// the collection itself is never touched.
func (s *LeadStore) SelectLead(id uuid.UUID) *domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead := s.find(id)
	if lead == nil {
		s.selectedID = uuid.Nil
		return nil
	}
	s.selectedID = lead.ID
	return lead.Clone()
}

// Selected returns a copy of the currently selected lead, or nil when no
// lead is selected.
func (s *LeadStore) Selected() *domain.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selectedID == uuid.Nil {
		return nil
	}
	lead := s.find(s.selectedID)
	if lead == nil {
		return nil
	}
	return lead.Clone()
}

// UpdateLead merges the non-nil contact fields into the lead. The id,
// stages and creation date are not touched by this path.
func (s *LeadStore) UpdateLead(id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead := s.find(id)
	if lead == nil {
		return nil, ErrLeadNotFound
	}

	if req.CustomerName != nil {
		lead.CustomerName = *req.CustomerName
	}
	if req.PhoneNumber != nil {
		lead.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.ProjectTitle != nil {
		lead.ProjectTitle = *req.ProjectTitle
	}
	if req.Location != nil {
		lead.Location = *req.Location
	}

	return lead.Clone(), nil
}

// DeleteLead removes the lead. When the deleted lead was selected, the
// selection falls back to the first remaining lead, or to none.
func (s *LeadStore) DeleteLead(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, lead := range s.leads {
		if lead.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrLeadNotFound
	}

	s.leads = append(s.leads[:idx], s.leads[idx+1:]...)

	if s.selectedID == id {
		if len(s.leads) > 0 {
			s.selectedID = s.leads[0].ID
		} else {
			s.selectedID = uuid.Nil
		}
	}

	s.logger.Info("lead deleted", zap.String("lead_id", id.String()))
	return nil
}

// UpdateStage merges the non-nil fields into one stage of a lead. Status
// changes are validated against the transition rules. Moving a stage to
// done force-sets its actual date to today, overriding any caller-supplied
// value; reverting to pending keeps the stale actual date unless the
// pipeline is configured to clear it.
func (s *LeadStore) UpdateStage(leadID, stageID uuid.UUID, req *domain.UpdateStageRequest) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead := s.find(leadID)
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	stage := lead.StageByID(stageID)
	if stage == nil {
		return nil, ErrStageNotFound
	}

	if req.Status != nil && !domain.CanTransition(stage.Status, *req.Status) {
		return nil, ErrInvalidTransition
	}

	if req.Notes != nil {
		stage.Notes = *req.Notes
	}
	if req.ExpectedDate != nil {
		stage.ExpectedDate = *req.ExpectedDate
	}
	if req.ActualDate != nil {
		d := *req.ActualDate
		stage.ActualDate = &d
	}

	if req.Status != nil {
		from := stage.Status
		stage.Status = *req.Status
		switch {
		case *req.Status == domain.StageDone:
			today := s.now()
			stage.ActualDate = &today
		case *req.Status == domain.StagePending && s.cfg.ClearActualDateOnReopen:
			stage.ActualDate = nil
		}
		if from != *req.Status {
			s.logger.Info("stage status changed",
				zap.String("lead_id", leadID.String()),
				zap.String("stage", stage.Name),
				zap.String("from", string(from)),
				zap.String("to", string(*req.Status)),
			)
		}
	}

	return lead.Clone(), nil
}

// UpdateTimelineInterval sets the lead's timeline axis granularity. The
// value must be one of the configured allowed intervals.
func (s *LeadStore) UpdateTimelineInterval(leadID uuid.UUID, minutes int) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.IntervalAllowed(minutes) {
		return nil, ErrInvalidInterval
	}
	lead := s.find(leadID)
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	lead.TimelineInterval = minutes
	return lead.Clone(), nil
}

// Timeline returns the derived timeline view of a lead as of today.
func (s *LeadStore) Timeline(leadID uuid.UUID) ([]domain.TimelineEntry, error) {
	lead, err := s.GetLead(leadID)
	if err != nil {
		return nil, err
	}
	return domain.Timeline(lead, s.now()), nil
}

// Milestones returns the lead's stages partitioned by milestone.
func (s *LeadStore) Milestones(leadID uuid.UUID) ([]domain.MilestoneGroup, error) {
	lead, err := s.GetLead(leadID)
	if err != nil {
		return nil, err
	}
	return domain.MilestoneGroups(lead), nil
}

// Progress returns the lead's derived completion percentage and band.
func (s *LeadStore) Progress(leadID uuid.UUID) (*domain.ProgressResponse, error) {
	lead, err := s.GetLead(leadID)
	if err != nil {
		return nil, err
	}
	p := domain.Progress(lead)
	return &domain.ProgressResponse{Progress: p, Band: domain.BandOf(p)}, nil
}

// OverdueStages returns, per lead, the pending stages strictly past their
// expected date as of today. Used by the scheduled overdue report.
func (s *LeadStore) OverdueStages() map[uuid.UUID][]domain.TimelineEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := s.now()
	out := make(map[uuid.UUID][]domain.TimelineEntry)
	for _, lead := range s.leads {
		for _, entry := range domain.Timeline(lead, today) {
			if entry.State == domain.ScheduleLate {
				out[lead.ID] = append(out[lead.ID], entry)
			}
		}
	}
	return out
}

// Export returns a deep copy of the full state for snapshotting.
func (s *LeadStore) Export() ([]*domain.Lead, uuid.UUID) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]*domain.Lead, len(s.leads))
	for i, lead := range s.leads {
		leads[i] = lead.Clone()
	}
	return leads, s.selectedID
}

// Restore replaces the full state, typically from a snapshot at startup.
// A selected id not present in the restored collection is discarded.
func (s *LeadStore) Restore(leads []*domain.Lead, selectedID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = make([]*domain.Lead, len(leads))
	for i, lead := range leads {
		s.leads[i] = lead.Clone()
	}
	s.selectedID = uuid.Nil
	for _, lead := range s.leads {
		if lead.ID == selectedID {
			s.selectedID = selectedID
			break
		}
	}
}

// Count returns the number of leads.
func (s *LeadStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

// find must be called with the lock held.
func (s *LeadStore) find(id uuid.UUID) *domain.Lead {
	for _, lead := range s.leads {
		if lead.ID == id {
			return lead
		}
	}
	return nil
}
