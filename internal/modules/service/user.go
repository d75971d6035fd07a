package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/repo"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name  string
	Email string
}

type UserService interface {
	// Register creates the profile of a provider subject. New users are never
	// administrators.
	Register(ctx context.Context, subject string, in RegisterInput) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateName(ctx context.Context, v auth.Viewer, name string) (*model.User, error)
	List(ctx context.Context, v auth.Viewer) ([]model.User, error)
}

type userService struct {
	r           repo.UserRepo
	live        LiveView
	emailDomain string
}

// NewUserService builds the user service. An empty emailDomain accepts any
// address.
func NewUserService(r repo.UserRepo, lv LiveView, emailDomain string) UserService {
	return &userService{r: r, live: lv, emailDomain: emailDomain}
}

func (s *userService) Register(ctx context.Context, subject string, in RegisterInput) (*model.User, error) {
	if subject == "" {
		return nil, ErrUnauthenticated
	}
	name, err := workflow.ValidatePersonName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := workflow.ValidateEmail(in.Email, "")
	if err != nil {
		return nil, err
	}
	if _, err := workflow.ValidateEmail(email, s.emailDomain); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmailDomain, err)
	}

	if _, err := s.r.Get(ctx, subject); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u := &model.User{ID: subject, Name: name, Email: email, Role: model.RoleUser}
	if err := s.r.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.live.Changed(ctx, live.Users)
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *userService) UpdateName(ctx context.Context, v auth.Viewer, name string) (*model.User, error) {
	if !v.Authenticated() {
		return nil, ErrUnauthenticated
	}
	n, err := workflow.ValidatePersonName(name)
	if err != nil {
		return nil, err
	}
	if err := s.r.UpdateName(ctx, v.ID, n); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user name: %w", err)
	}
	s.live.Changed(ctx, live.Users)
	return s.Get(ctx, v.ID)
}

func (s *userService) List(ctx context.Context, v auth.Viewer) ([]model.User, error) {
	if !v.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.r.ListAll(ctx)
}
