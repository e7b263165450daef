package domain

// LoginRequest carries credentials for the login endpoint
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful authentication
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CreateUserRequest carries the fields for creating a user account
type CreateUserRequest struct {
	Name     string   `json:"name" validate:"required,max=200"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     UserRole `json:"role" validate:"required,oneof=admin user"`
}

// UpdateUserRequest carries a partial update of a user account. Nil fields
// are left unchanged.
type UpdateUserRequest struct {
	Name  *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Email *string   `json:"email,omitempty" validate:"omitempty,email"`
	Role  *UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// CreateLeadRequest carries the contact fields for a new lead. Stages and
// creation date are derived by the store, never supplied by the caller.
type CreateLeadRequest struct {
	CustomerName string `json:"customerName" validate:"required,max=200"`
	PhoneNumber  string `json:"phoneNumber" validate:"max=50"`
	Email        string `json:"email" validate:"omitempty,email"`
	ProjectTitle string `json:"projectTitle" validate:"max=200"`
	Location     string `json:"location" validate:"max=200"`
}

// UpdateLeadRequest carries a partial update of a lead's contact fields.
// The id, stages and creation date are immutable through this path.
type UpdateLeadRequest struct {
	CustomerName *string `json:"customerName,omitempty" validate:"omitempty,max=200"`
	PhoneNumber  *string `json:"phoneNumber,omitempty" validate:"omitempty,max=50"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	ProjectTitle *string `json:"projectTitle,omitempty" validate:"omitempty,max=200"`
	Location     *string `json:"location,omitempty" validate:"omitempty,max=200"`
}

// UpdateStageRequest carries a partial update of one stage within a lead.
// The stage id and order are immutable. Setting status to done force-sets
// the actual date to today regardless of any ActualDate supplied here.
type UpdateStageRequest struct {
	Status       *StageStatus `json:"status,omitempty" validate:"omitempty,oneof=pending done lost"`
	Notes        *string      `json:"notes,omitempty"`
	ExpectedDate *Date        `json:"expectedDate,omitempty"`
	ActualDate   *Date        `json:"actualDate,omitempty"`
}

// UpdateTimelineIntervalRequest sets a lead's timeline axis granularity
type UpdateTimelineIntervalRequest struct {
	Minutes int `json:"minutes" validate:"required,gt=0"`
}

// LeadSummary is the list view of a lead with its derived progress
type LeadSummary struct {
	ID           string       `json:"id"`
	CustomerName string       `json:"customerName"`
	ProjectTitle string       `json:"projectTitle"`
	Location     string       `json:"location"`
	CreatedAt    Date         `json:"createdAt"`
	Progress     int          `json:"progress"`
	Band         ProgressBand `json:"band"`
}

// ProgressResponse is the derived progress view of a lead
type ProgressResponse struct {
	Progress int          `json:"progress"`
	Band     ProgressBand `json:"band"`
}
