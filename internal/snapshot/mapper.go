package snapshot

import (
	"fmt"
	"sort"

	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/google/uuid"
)

func leadToRecord(lead *domain.Lead, position int, selected bool) LeadRecord {
	rec := LeadRecord{
		ID:               lead.ID.String(),
		CustomerName:     lead.CustomerName,
		PhoneNumber:      lead.PhoneNumber,
		Email:            lead.Email,
		ProjectTitle:     lead.ProjectTitle,
		Location:         lead.Location,
		CreatedDate:      lead.CreatedAt.String(),
		TimelineInterval: lead.TimelineInterval,
		Position:         position,
		Selected:         selected,
		Stages:           make([]StageRecord, len(lead.Stages)),
	}
	for i, stage := range lead.Stages {
		rec.Stages[i] = stageToRecord(lead.ID, stage)
	}
	return rec
}

func stageToRecord(leadID uuid.UUID, stage domain.Stage) StageRecord {
	rec := StageRecord{
		ID:         stage.ID.String(),
		LeadID:     leadID.String(),
		Name:       stage.Name,
		Status:     string(stage.Status),
		Notes:      stage.Notes,
		StageOrder: stage.Order,
		Milestone:  stage.Milestone,
	}
	if !stage.ExpectedDate.IsZero() {
		rec.ExpectedDate = stage.ExpectedDate.String()
	}
	if stage.ActualDate != nil {
		s := stage.ActualDate.String()
		rec.ActualDate = &s
	}
	return rec
}

func userToRecord(user *domain.User) UserRecord {
	return UserRecord{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		PasswordHash: append([]byte(nil), user.PasswordHash...),
	}
}

func recordToLead(rec LeadRecord) (*domain.Lead, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot lead %s: %w", rec.ID, err)
	}
	created, err := domain.ParseDate(rec.CreatedDate)
	if err != nil {
		return nil, fmt.Errorf("snapshot lead %s: %w", rec.ID, err)
	}

	lead := &domain.Lead{
		ID:               id,
		CustomerName:     rec.CustomerName,
		PhoneNumber:      rec.PhoneNumber,
		Email:            rec.Email,
		ProjectTitle:     rec.ProjectTitle,
		Location:         rec.Location,
		CreatedAt:        created,
		TimelineInterval: rec.TimelineInterval,
		Stages:           make([]domain.Stage, len(rec.Stages)),
	}

	for i, sr := range rec.Stages {
		stage, err := recordToStage(sr)
		if err != nil {
			return nil, fmt.Errorf("snapshot lead %s: %w", rec.ID, err)
		}
		lead.Stages[i] = stage
	}
	// Stage rows come back in arbitrary order; restore pipeline order.
	sort.SliceStable(lead.Stages, func(i, j int) bool {
		return lead.Stages[i].Order < lead.Stages[j].Order
	})

	return lead, nil
}

func recordToStage(rec StageRecord) (domain.Stage, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return domain.Stage{}, fmt.Errorf("stage %s: %w", rec.ID, err)
	}
	status := domain.StageStatus(rec.Status)
	if !status.Valid() {
		return domain.Stage{}, fmt.Errorf("stage %s: unknown status %q", rec.ID, rec.Status)
	}

	stage := domain.Stage{
		ID:        id,
		Name:      rec.Name,
		Status:    status,
		Notes:     rec.Notes,
		Order:     rec.StageOrder,
		Milestone: rec.Milestone,
	}
	if rec.ExpectedDate != "" {
		d, err := domain.ParseDate(rec.ExpectedDate)
		if err != nil {
			return domain.Stage{}, fmt.Errorf("stage %s: %w", rec.ID, err)
		}
		stage.ExpectedDate = d
	}
	if rec.ActualDate != nil && *rec.ActualDate != "" {
		d, err := domain.ParseDate(*rec.ActualDate)
		if err != nil {
			return domain.Stage{}, fmt.Errorf("stage %s: %w", rec.ID, err)
		}
		stage.ActualDate = &d
	}

	return stage, nil
}

func recordToUser(rec UserRecord) (*domain.User, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot user %s: %w", rec.ID, err)
	}
	role := domain.UserRole(rec.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("snapshot user %s: unknown role %q", rec.ID, rec.Role)
	}

	return &domain.User{
		ID:           id,
		Name:         rec.Name,
		Email:        rec.Email,
		Role:         role,
		PasswordHash: append([]byte(nil), rec.PasswordHash...),
	}, nil
}
