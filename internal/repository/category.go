package repository

import (
	"context"
	"tienda-services/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, categoryID uint) error
	FindByID(ctx context.Context, categoryID uint) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindAll(ctx context.Context) ([]*model.Category, error)
	FindMany(ctx context.Context, tx *gorm.DB, categoryIDs []uint) ([]*model.Category, error)
}

type categoryRepoImpl struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepoImpl{
		db: db,
	}
}

func (r *categoryRepoImpl) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Omit("Products").Create(category).Error
}

func (r *categoryRepoImpl) Update(ctx context.Context, category *model.Category) error {
	result := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// mysql reports unchanged rows as unaffected
		if _, err := r.FindByID(ctx, category.ID); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes the join rows first so no product keeps a dangling reference.
func (r *categoryRepoImpl) Delete(ctx context.Context, categoryID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category := &model.Category{ID: categoryID}
		if err := tx.Model(category).Association("Products").Clear(); err != nil {
			return err
		}

		result := tx.Delete(&model.Category{}, categoryID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (r *categoryRepoImpl) FindByID(ctx context.Context, categoryID uint) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", categoryID).
		First(&category).Error

	if err != nil {
		return nil, err
	}

	return &category, nil
}

func (r *categoryRepoImpl) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&category).Error

	if err != nil {
		return nil, err
	}

	return &category, nil
}

func (r *categoryRepoImpl) FindAll(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&categories).Error

	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *categoryRepoImpl) FindMany(ctx context.Context, tx *gorm.DB, categoryIDs []uint) ([]*model.Category, error) {
	var categories []*model.Category
	if len(categoryIDs) == 0 {
		return categories, nil
	}

	err := conn(r.db, tx).WithContext(ctx).
		Where("id IN ?", categoryIDs).
		Order("id").
		Find(&categories).Error

	if err != nil {
		return nil, err
	}

	return categories, nil
}
