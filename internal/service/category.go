package service

import (
	"context"
	"errors"
	"fmt"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"

	"gorm.io/gorm"
)

type CategoryService interface {
	List(ctx context.Context) ([]*model.Category, error)
	Get(ctx context.Context, categoryID uint) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	Create(ctx context.Context, req dto.CategoryRequest) (*model.Category, error)
	Update(ctx context.Context, categoryID uint, req dto.CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, categoryID uint) error
}

type categoryServiceImpl struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryServiceImpl{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryServiceImpl) List(ctx context.Context) ([]*model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *categoryServiceImpl) Get(ctx context.Context, categoryID uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, notFoundOr(err, "category", categoryID)
	}
	return category, nil
}

func (s *categoryServiceImpl) GetByName(ctx context.Context, name string) (*model.Category, error) {
	category, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		return nil, notFoundOr(err, "category", name)
	}
	return category, nil
}

// checkNameFree fails with ErrConflict when another category already uses name.
func (s *categoryServiceImpl) checkNameFree(ctx context.Context, name string, categoryID uint) error {
	other, err := s.categoryRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if other.ID != categoryID {
		return fmt.Errorf("category name %q already exists: %w", name, ErrConflict)
	}
	return nil
}

func (s *categoryServiceImpl) Create(ctx context.Context, req dto.CategoryRequest) (*model.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, req.Name, 0); err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, conflictOr(err, "category name already exists")
	}

	return category, nil
}

func (s *categoryServiceImpl) Update(ctx context.Context, categoryID uint, req dto.CategoryRequest) (*model.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, req.Name, categoryID); err != nil {
		return nil, err
	}

	category := &model.Category{
		ID:          categoryID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, notFoundOr(conflictOr(err, "category name already exists"), "category", categoryID)
	}

	return category, nil
}

func (s *categoryServiceImpl) Delete(ctx context.Context, categoryID uint) error {
	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return notFoundOr(err, "category", categoryID)
	}
	return nil
}
