package services

import (
	"strings"
	"time"

	"fyp-management-api/models"
	"fyp-management-api/store"
)

// UserInput carries the fields for a new account. Password arrives already
// hashed; hashing lives at the auth boundary.
type UserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

// UserService handles account management. Listing and creation are admin
// operations; roles are immutable once set.
type UserService struct {
	store store.Store
	now   func() time.Time
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st, now: time.Now}
}

// Create registers an account (admin only).
func (s *UserService) Create(actor *models.User, input UserInput) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, Validationf("email is required")
	}
	if input.PasswordHash == "" {
		return nil, Validationf("password is required")
	}
	if !models.ValidRole(input.Role) {
		return nil, Validationf("unknown role %q", input.Role)
	}

	u := &models.User{
		Email:     email,
		Password:  input.PasswordHash,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateUser(u); err != nil {
		return nil, fromStore(err)
	}
	return u, nil
}

// List returns accounts, optionally narrowed by role (admin only).
func (s *UserService) List(actor *models.User, role string) ([]models.User, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if role != "" && !models.ValidRole(role) {
		return nil, Validationf("unknown role %q", role)
	}
	out, err := s.store.ListUsers(store.UserFilter{Role: role})
	if err != nil {
		return nil, fromStore(err)
	}
	return out, nil
}

// Get returns an account: yourself, or anyone for admin.
func (s *UserService) Get(actor *models.User, id uint) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, ErrNotFound
	}
	u, err := s.store.GetUser(id)
	if err != nil {
		return nil, fromStore(err)
	}
	return u, nil
}

// ChangePassword swaps the stored hash for the acting user.
func (s *UserService) ChangePassword(actor *models.User, newHash string) error {
	if actor == nil {
		return ErrUnauthorized
	}
	if newHash == "" {
		return Validationf("password is required")
	}
	u, err := s.store.GetUser(actor.UserID)
	if err != nil {
		return fromStore(err)
	}
	u.Password = newHash
	return fromStore(s.store.UpdateUser(u))
}
