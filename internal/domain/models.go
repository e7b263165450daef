package domain

import (
	"github.com/google/uuid"
)

// UserRole represents the access level of a user
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an account that can sign in and manage leads
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  UserRole  `json:"role"`
	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash []byte `json:"-"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// StageStatus represents the lifecycle state of a pipeline stage
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageDone    StageStatus = "done"
	StageLost    StageStatus = "lost"
)

// Valid reports whether the status is one of the known states.
func (s StageStatus) Valid() bool {
	return s == StagePending || s == StageDone || s == StageLost
}

// Stage status transition rules: done and lost are reached only from
// pending, and both can be manually reset back to pending.
var validStatusTransitions = map[StageStatus][]StageStatus{
	StagePending: {StageDone, StageLost},
	StageDone:    {StagePending},
	StageLost:    {StagePending},
}

// CanTransition reports whether a stage may move from one status to another.
// A no-op transition (same status) is always allowed.
func CanTransition(from, to StageStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Stage is a single step in a lead's pipeline. The set of stages is fixed
// when the lead is created; stages are only ever mutated in place.
type Stage struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Status       StageStatus `json:"status"`
	Notes        string      `json:"notes"`
	ExpectedDate Date        `json:"expectedDate"`
	ActualDate   *Date       `json:"actualDate,omitempty"`
	// Order is the stage's position in the pipeline, assigned from the
	// template at creation and never changed afterwards.
	Order     int    `json:"order"`
	Milestone string `json:"milestone,omitempty"`
}

// Clone returns a deep copy of the stage.
func (s Stage) Clone() Stage {
	out := s
	if s.ActualDate != nil {
		d := *s.ActualDate
		out.ActualDate = &d
	}
	return out
}

// DefaultTimelineInterval is the timeline axis granularity (minutes)
// assigned to new leads.
const DefaultTimelineInterval = 120

// Lead represents a sales lead moving through the pipeline
type Lead struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customerName"`
	PhoneNumber  string    `json:"phoneNumber"`
	Email        string    `json:"email"`
	ProjectTitle string    `json:"projectTitle"`
	Location     string    `json:"location"`
	CreatedAt    Date      `json:"createdAt"`
	Stages       []Stage   `json:"stages"`
	// TimelineInterval is the display granularity of the timeline axis
	// in minutes.
	TimelineInterval int `json:"timelineInterval"`
}

// Clone returns a deep copy of the lead, including its stages.
func (l *Lead) Clone() *Lead {
	out := *l
	out.Stages = make([]Stage, len(l.Stages))
	for i, s := range l.Stages {
		out.Stages[i] = s.Clone()
	}
	return &out
}

// StageByID returns a pointer to the stage with the given id, or nil.
func (l *Lead) StageByID(id uuid.UUID) *Stage {
	for i := range l.Stages {
		if l.Stages[i].ID == id {
			return &l.Stages[i]
		}
	}
	return nil
}
