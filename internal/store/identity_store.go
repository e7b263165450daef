package store

import (
	"strings"
	"sync"

	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// IdentityStore is the in-memory catalog of user accounts. Credentials are
// verified against bcrypt hashes; authentication failure does not reveal
// whether the email or the password was wrong.
type IdentityStore struct {
	mu         sync.RWMutex
	bcryptCost int
	logger     *zap.Logger
	users      []*domain.User
}

// NewIdentityStore creates an identity store with the given bcrypt cost.
func NewIdentityStore(bcryptCost int, logger *zap.Logger) *IdentityStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityStore{
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate verifies the credentials and returns the matching user.
// Unknown email and wrong password both yield ErrAuthenticationFailed.
func (s *IdentityStore) Authenticate(email, password string) (*domain.User, error) {
	s.mu.RLock()
	user := s.findByEmail(email)
	s.mu.RUnlock()

	if user == nil {
		return nil, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}

	return cloneUser(user), nil
}

// CreateUser adds a user account with a freshly generated id and a bcrypt
// password hash. The email must not already be in use.
func (s *IdentityStore) CreateUser(req *domain.CreateUserRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByEmail(req.Email) != nil {
		return nil, ErrEmailTaken
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
	}
	s.users = append(s.users, user)

	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return cloneUser(user), nil
}

// GetUser returns a copy of the user with the given id.
func (s *IdentityStore) GetUser(id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.find(id)
	if user == nil {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

// ListUsers returns copies of all users in insertion order.
func (s *IdentityStore) ListUsers() []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, len(s.users))
	for i, u := range s.users {
		out[i] = cloneUser(u)
	}
	return out
}

// UpdateUser merges the non-nil fields into the user. Changing the email
// to one already held by another user is rejected.
func (s *IdentityStore) UpdateUser(id uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.find(id)
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Email != nil {
		if other := s.findByEmail(*req.Email); other != nil && other.ID != id {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	return cloneUser(user), nil
}

// DeleteUser removes the user with the given id.
func (s *IdentityStore) DeleteUser(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.logger.Info("user deleted", zap.String("user_id", id.String()))
			return nil
		}
	}
	return ErrUserNotFound
}

// Bootstrap seeds an initial admin account when the catalog is empty.
// Returns true when an account was created.
func (s *IdentityStore) Bootstrap(email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	s.mu.RLock()
	empty := len(s.users) == 0
	s.mu.RUnlock()
	if !empty {
		return false, nil
	}

	_, err := s.CreateUser(&domain.CreateUserRequest{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Export returns a deep copy of all users for snapshotting.
func (s *IdentityStore) Export() []*domain.User {
	return s.ListUsers()
}

// Restore replaces the user catalog, typically from a snapshot at startup.
func (s *IdentityStore) Restore(users []*domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make([]*domain.User, len(users))
	for i, u := range users {
		s.users[i] = cloneUser(u)
	}
}

// Count returns the number of users.
func (s *IdentityStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// find and findByEmail must be called with the lock held.
func (s *IdentityStore) find(id uuid.UUID) *domain.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *IdentityStore) findByEmail(email string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	out := *u
	out.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &out
}
