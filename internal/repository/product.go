package repository

import (
	"context"
	"strings"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, tx *gorm.DB, product *model.Product) error
	Update(ctx context.Context, tx *gorm.DB, product *model.Product) error
	Delete(ctx context.Context, tx *gorm.DB, productID uint) error
	FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
	FindAll(ctx context.Context) ([]*model.Product, error)
	FindByCategory(ctx context.Context, categoryID uint) ([]*model.Product, error)
	Search(ctx context.Context, filter string) ([]*model.Product, error)
	FirstPerCategory(ctx context.Context) ([]*dto.FirstProductByCategory, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) (bool, error)
	IncrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) preloaded(db *gorm.DB) *gorm.DB {
	return db.Preload("Categories", orderByID("categories"))
}

// Create inserts the product and its join rows. Categories are expected to exist already.
func (r *productRepoImpl) Create(ctx context.Context, tx *gorm.DB, product *model.Product) error {
	return conn(r.db, tx).WithContext(ctx).
		Omit("Categories.*").
		Create(product).Error
}

func (r *productRepoImpl) Update(ctx context.Context, tx *gorm.DB, product *model.Product) error {
	db := conn(r.db, tx).WithContext(ctx)

	if err := db.Omit(clause.Associations).Save(product).Error; err != nil {
		return err
	}

	return db.Model(product).Association("Categories").Replace(product.Categories)
}

func (r *productRepoImpl) Delete(ctx context.Context, tx *gorm.DB, productID uint) error {
	db := conn(r.db, tx).WithContext(ctx)

	product := &model.Product{ID: productID}
	if err := db.Model(product).Association("Categories").Clear(); err != nil {
		return err
	}

	result := db.Delete(&model.Product{}, productID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.preloaded(conn(r.db, tx).WithContext(ctx)).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindAll(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.preloaded(r.db.WithContext(ctx)).
		Order("id").
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) FindByCategory(ctx context.Context, categoryID uint) ([]*model.Product, error) {
	var products []*model.Product
	err := r.preloaded(r.db.WithContext(ctx)).
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ?", categoryID).
		Order("products.id").
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

// Search matches the filter against product and category names, case-insensitively.
func (r *productRepoImpl) Search(ctx context.Context, filter string) ([]*model.Product, error) {
	pattern := "%" + strings.ToLower(filter) + "%"

	matching := r.db.Table("products").
		Select("products.id").
		Joins("LEFT JOIN product_categories pc ON pc.product_id = products.id").
		Joins("LEFT JOIN categories c ON c.id = pc.category_id").
		Where("LOWER(products.name) LIKE ? OR LOWER(c.name) LIKE ?", pattern, pattern)

	var products []*model.Product
	err := r.preloaded(r.db.WithContext(ctx)).
		Where("id IN (?)", matching).
		Order("id").
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

// FirstPerCategory returns, for every category with products, the product with the lowest id.
func (r *productRepoImpl) FirstPerCategory(ctx context.Context) ([]*dto.FirstProductByCategory, error) {
	var rows []*dto.FirstProductByCategory
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS category_id,
		       c.name AS category_name,
		       c.description AS category_description,
		       p.id AS product_id,
		       p.name AS product_name,
		       p.image AS product_image
		FROM (
			SELECT category_id, MIN(product_id) AS product_id
			FROM product_categories
			GROUP BY category_id
		) fp
		JOIN categories c ON c.id = fp.category_id
		JOIN products p ON p.id = fp.product_id
		ORDER BY c.id
	`).Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

// DecrementStock subtracts quantity only when enough stock is left, in a single statement.
// It reports false when no row matched: the product is missing or the stock is short.
func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *productRepoImpl) IncrementStock(ctx context.Context, tx *gorm.DB, productID uint, quantity int64) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
