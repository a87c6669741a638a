package service

import (
	"context"
	"errors"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

// MedicineService инкапсулирует бизнес-логику вокруг каталога
type MedicineService struct {
	repo repository.MedicineRepository
}

func NewMedicineService(repo repository.MedicineRepository) *MedicineService {
	return &MedicineService{repo: repo}
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

func (s *MedicineService) Create(ctx context.Context, m domain.Medicine) (*domain.Medicine, error) {
	if m.StoreID <= 0 || m.Name == "" || m.UnitPrice < 0 || m.Quantity < 0 {
		return nil, ErrInvalidInput
	}
	if m.IsCommunity && m.DistributionLimit <= 0 {
		return nil, ErrInvalidInput
	}
	cp := m
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *MedicineService) GetByID(ctx context.Context, id int64) (*domain.Medicine, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Update replaces the mutable fields; only the owning store may update.
func (s *MedicineService) Update(ctx context.Context, storeID int64, m domain.Medicine) (*domain.Medicine, error) {
	if m.ID <= 0 || m.Name == "" || m.UnitPrice < 0 || m.Quantity < 0 {
		return nil, ErrInvalidInput
	}
	existing, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if existing.StoreID != storeID {
		return nil, ErrForbidden
	}
	cp := m
	cp.StoreID = existing.StoreID
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *MedicineService) Delete(ctx context.Context, storeID, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.StoreID != storeID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func (s *MedicineService) List(ctx context.Context, f repository.MedicineFilter) ([]domain.Medicine, error) {
	return s.repo.List(ctx, f)
}
