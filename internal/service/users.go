package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/validation"
)

type CreateUserRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=32"`
	Password  string `json:"password"   validate:"required,min=6"`
	Email     string `json:"email"      validate:"omitempty,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
}

// UserService owns accounts. It is also the account lookup used for login.
type UserService struct {
	Repo   repo.Repository[models.User]
	Events mykafka.Publisher
	Now    func() time.Time

	// serializes the username uniqueness check with the insert
	mu sync.Mutex
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (auth.Account, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return auth.Account{}, err
	}
	return auth.Account{Subject: u.Subject(), PasswordHash: u.PasswordHash}, nil
}

func (s *UserService) byUsername(ctx context.Context, username string) (models.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, auth.ErrAccountNotFound
}

// List returns all users, optionally only those with role.
func (s *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	var want auth.Role
	if role != "" {
		r, err := auth.ParseRole(role)
		if err != nil {
			return nil, fail(ErrValidation, "unknown role %q", role)
		}
		want = r
	}

	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if want == 0 {
		return users, nil
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Role == want {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, who auth.Identity, id string) (models.User, error) {
	if !canAccessUser(who, id) {
		return models.User{}, fail(ErrForbidden, "access to this user is not allowed")
	}
	u, err := s.Repo.Get(ctx, id)
	return u, fromRepo(err, "user %s not found", id)
}

func canAccessUser(who auth.Identity, id string) bool {
	return who.ID == id || who.IsAdmin()
}

// Create is the admin path: any role may be assigned, user by default.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (models.User, error) {
	role := auth.RoleUser
	if req.Role != "" {
		r, err := auth.ParseRole(req.Role)
		if err != nil {
			return models.User{}, fail(ErrValidation, "unknown role %q", req.Role)
		}
		role = r
	}
	return s.create(ctx, req, role)
}

// Register is the public path and always yields a user account.
func (s *UserService) Register(ctx context.Context, req CreateUserRequest) (models.User, error) {
	return s.create(ctx, req, auth.RoleUser)
}

func (s *UserService) create(ctx context.Context, req CreateUserRequest, role auth.Role) (models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(req); err != nil {
		return models.User{}, fail(ErrValidation, "%s", err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}

	ts := now(s.Now)
	u := models.User{
		ID:           newID(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: pwHash,
		Role:         role,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	out, err := s.insertUnique(ctx, u)
	if err != nil {
		return models.User{}, err
	}

	mykafka.Publish(ctx, s.Events, out.ID, "user_created", map[string]string{
		"id": out.ID, "username": out.Username, "role": out.Role.String(),
	})
	return out, nil
}

// insertUnique serializes the username check with the insert.
func (s *UserService) insertUnique(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch _, err := s.byUsername(ctx, u.Username); {
	case err == nil:
		return models.User{}, fail(ErrConflict, "username %s is already taken", u.Username)
	case !errors.Is(err, auth.ErrAccountNotFound):
		return models.User{}, err
	}

	out, err := s.Repo.Insert(ctx, u)
	if err != nil {
		return models.User{}, fromRepo(err, "user %s already exists", u.Username)
	}
	return out, nil
}

// Update lets owners edit their profile. Only admins may change a role.
func (s *UserService) Update(ctx context.Context, who auth.Identity, id string, req UpdateUserRequest) (models.User, error) {
	if !canAccessUser(who, id) {
		return models.User{}, fail(ErrForbidden, "access to this user is not allowed")
	}

	var role auth.Role
	if req.Role != nil {
		if !who.IsAdmin() {
			return models.User{}, fail(ErrForbidden, "only admins can change roles")
		}
		r, err := auth.ParseRole(*req.Role)
		if err != nil {
			return models.User{}, fail(ErrValidation, "unknown role %q", *req.Role)
		}
		role = r
	}
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		return models.User{}, fail(ErrValidation, "first_name cannot be empty")
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) == "" {
		return models.User{}, fail(ErrValidation, "last_name cannot be empty")
	}
	if req.Email != nil {
		if err := validation.Struct(struct {
			Email string `json:"email" validate:"email"`
		}{*req.Email}); err != nil {
			return models.User{}, fail(ErrValidation, "%s", err.Error())
		}
	}

	var pwHash string
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return models.User{}, fail(ErrValidation, "password must be at least 6")
		}
		h, err := hash.HashPassword(*req.Password)
		if err != nil {
			return models.User{}, err
		}
		pwHash = h
	}

	out, err := s.Repo.Update(ctx, id, func(u *models.User) error {
		if req.Email != nil {
			u.Email = *req.Email
		}
		if req.FirstName != nil {
			u.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			u.LastName = strings.TrimSpace(*req.LastName)
		}
		if pwHash != "" {
			u.PasswordHash = pwHash
		}
		if role != 0 {
			u.Role = role
		}
		u.UpdatedAt = now(s.Now)
		return nil
	})
	return out, fromRepo(err, "user %s not found", id)
}

// Delete removes another account. Nobody can delete their own account here.
func (s *UserService) Delete(ctx context.Context, who auth.Identity, id string) (models.User, error) {
	if !who.IsAdmin() {
		return models.User{}, fail(ErrForbidden, "only admins can delete users")
	}
	if who.ID == id {
		return models.User{}, fail(ErrValidation, "you cannot delete your own account")
	}
	u, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return models.User{}, fromRepo(err, "user %s not found", id)
	}
	mykafka.Publish(ctx, s.Events, u.ID, "user_deleted", map[string]string{"id": u.ID})
	return u, nil
}
