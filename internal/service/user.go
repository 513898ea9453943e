package service

import (
	"context"
	"fmt"
	"strings"

	"libnext-backend/internal/domain"
	"libnext-backend/internal/repository"

	"github.com/go-playground/validator/v10"
)

type userService struct {
	userRepo repository.UserRepository
	validate *validator.Validate
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo, validate: validator.New()}
}

func (s *userService) validEmail(email string) bool {
	return s.validate.Var(email, "required,email") == nil
}

func (s *userService) CreateUser(ctx context.Context, email, name string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if !s.validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.DefaultUserName
	}

	user := &domain.User{Email: email, Name: name}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) UpdateUser(ctx context.Context, id int32, upd domain.UserUpdate) (*domain.User, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	if upd.Email != nil && !s.validEmail(*upd.Email) {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, *upd.Email)
	}
	return s.userRepo.Update(ctx, id, upd)
}

func (s *userService) DeleteUser(ctx context.Context, id int32) (*domain.User, error) {
	return s.userRepo.Delete(ctx, id)
}
