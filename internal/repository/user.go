package repository

import (
	"context"
	"tienda-services/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *model.User) error
	Update(ctx context.Context, tx *gorm.DB, user *model.User) error
	Delete(ctx context.Context, userID uint) error
	FindByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error)
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	EmailTaken(ctx context.Context, tx *gorm.DB, email string, exceptUserID uint) (bool, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) preloaded(db *gorm.DB) *gorm.DB {
	return db.Preload("Roles", orderByID("roles"))
}

func (r *userRepoImpl) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	return conn(r.db, tx).WithContext(ctx).
		Omit("Roles.*").
		Create(user).Error
}

func (r *userRepoImpl) Update(ctx context.Context, tx *gorm.DB, user *model.User) error {
	db := conn(r.db, tx).WithContext(ctx)

	if err := db.Omit(clause.Associations).Save(user).Error; err != nil {
		return err
	}

	return db.Model(user).Association("Roles").Replace(user.Roles)
}

// Delete detaches the roles, never the roles themselves, then removes the user.
func (r *userRepoImpl) Delete(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &model.User{ID: userID}
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return err
		}

		result := tx.Delete(&model.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

func (r *userRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error) {
	var user model.User
	err := r.preloaded(conn(r.db, tx).WithContext(ctx)).
		Where("id = ?", userID).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*model.User, error) {
	var user model.User
	err := r.preloaded(conn(r.db, tx).WithContext(ctx)).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.preloaded(r.db.WithContext(ctx)).
		Order("id").
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepoImpl) EmailTaken(ctx context.Context, tx *gorm.DB, email string, exceptUserID uint) (bool, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&model.User{}).
		Where("email = ? AND id <> ?", email, exceptUserID).
		Count(&count).Error

	return count > 0, err
}
