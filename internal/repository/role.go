package repository

import (
	"context"
	"tienda-services/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, roleID uint) error
	FindByID(ctx context.Context, roleID uint) (*model.Role, error)
	FindAll(ctx context.Context) ([]*model.Role, error)
	FindMany(ctx context.Context, tx *gorm.DB, roleIDs []uint) ([]*model.Role, error)
}

type roleRepoImpl struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepoImpl{
		db: db,
	}
}

func (r *roleRepoImpl) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Omit("Users").Create(role).Error
}

func (r *roleRepoImpl) Update(ctx context.Context, role *model.Role) error {
	result := r.db.WithContext(ctx).
		Model(&model.Role{}).
		Where("id = ?", role.ID).
		Update("name", role.Name)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, role.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *roleRepoImpl) Delete(ctx context.Context, roleID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role := &model.Role{ID: roleID}
		if err := tx.Model(role).Association("Users").Clear(); err != nil {
			return err
		}

		result := tx.Delete(&model.Role{}, roleID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (r *roleRepoImpl) FindByID(ctx context.Context, roleID uint) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where("id = ?", roleID).
		First(&role).Error

	if err != nil {
		return nil, err
	}

	return &role, nil
}

func (r *roleRepoImpl) FindAll(ctx context.Context) ([]*model.Role, error) {
	var roles []*model.Role
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&roles).Error

	if err != nil {
		return nil, err
	}

	return roles, nil
}

func (r *roleRepoImpl) FindMany(ctx context.Context, tx *gorm.DB, roleIDs []uint) ([]*model.Role, error) {
	var roles []*model.Role
	if len(roleIDs) == 0 {
		return roles, nil
	}

	err := conn(r.db, tx).WithContext(ctx).
		Where("id IN ?", roleIDs).
		Order("id").
		Find(&roles).Error

	if err != nil {
		return nil, err
	}

	return roles, nil
}
