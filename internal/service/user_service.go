package service

import (
	"context"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

// UserService хранит аккаунты фермеров, магазинов и врачей
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func validRole(r domain.Role) bool {
	return r == domain.RoleFarmer || r == domain.RoleStore || r == domain.RoleDoctor
}

func (s *UserService) Register(ctx context.Context, u domain.User) (*domain.User, error) {
	if u.Name == "" || !validRole(u.Role) {
		return nil, ErrInvalidInput
	}
	if u.Role == domain.RoleStore && u.StoreName == "" {
		return nil, ErrInvalidInput
	}
	cp := u
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}
