package repository

import (
	"context"
	"tienda-services/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	FindByEmail(ctx context.Context, email string) ([]*model.Order, error)
	FindByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error
	RecomputeTotal(ctx context.Context, tx *gorm.DB, orderID uint) (decimal.Decimal, error)
	Delete(ctx context.Context, tx *gorm.DB, orderID uint) error

	CreateLine(ctx context.Context, tx *gorm.DB, line *model.OrderLine) error
	FindLineByID(ctx context.Context, tx *gorm.DB, lineID uint) (*model.OrderLine, error)
	FindLines(ctx context.Context) ([]*model.OrderLine, error)
	FindLinesByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) ([]model.OrderLine, error)
	FindLinesByProductID(ctx context.Context, productID uint) ([]*model.OrderLine, error)
	DeleteLine(ctx context.Context, tx *gorm.DB, lineID uint) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) preloaded(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", orderByID("order_lines"))
}

// Create inserts the order header together with its lines.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return conn(r.db, tx).WithContext(ctx).Create(order).Error
}

// FindByID locks the order row when called inside a transaction, so writers of
// the same order queue up behind each other.
func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	db := conn(r.db, tx).WithContext(ctx)
	if tx != nil {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var order model.Order
	err := r.preloaded(db).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.preloaded(r.db.WithContext(ctx)).
		Order("id").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) FindByEmail(ctx context.Context, email string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.preloaded(r.db.WithContext(ctx)).
		Where("email = ?", email).
		Order("id").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) FindByStatus(ctx context.Context, status model.OrderStatus) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.preloaded(r.db.WithContext(ctx)).
		Where("status = ?", status).
		Order("id").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateStatus overwrites the status whatever the current one is.
func (r *orderRepoImpl) UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.exists(ctx, nil, orderID)
	}

	return nil
}

// RecomputeTotal stores the sum of the persisted line subtotals as the order
// total in one statement and returns it.
func (r *orderRepoImpl) RecomputeTotal(ctx context.Context, tx *gorm.DB, orderID uint) (decimal.Decimal, error) {
	db := conn(r.db, tx).WithContext(ctx)

	sum := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.OrderLine{}).
		Select("COALESCE(SUM(subtotal), 0)").
		Where("order_id = ?", orderID)

	result := db.Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("total", sum)

	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.exists(ctx, tx, orderID); err != nil {
			return decimal.Zero, err
		}
	}

	var order model.Order
	err := db.Session(&gorm.Session{NewDB: true}).
		Select("total").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return decimal.Zero, err
	}

	return order.Total, nil
}

// Delete removes the lines before the header.
func (r *orderRepoImpl) Delete(ctx context.Context, tx *gorm.DB, orderID uint) error {
	db := conn(r.db, tx).WithContext(ctx)

	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderLine{}).Error; err != nil {
		return err
	}

	result := db.Delete(&model.Order{}, orderID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) exists(ctx context.Context, tx *gorm.DB, orderID uint) error {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Count(&count).Error

	if err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) CreateLine(ctx context.Context, tx *gorm.DB, line *model.OrderLine) error {
	return conn(r.db, tx).WithContext(ctx).Create(line).Error
}

func (r *orderRepoImpl) FindLineByID(ctx context.Context, tx *gorm.DB, lineID uint) (*model.OrderLine, error) {
	var line model.OrderLine
	err := conn(r.db, tx).WithContext(ctx).
		Where("id = ?", lineID).
		First(&line).Error

	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *orderRepoImpl) FindLines(ctx context.Context) ([]*model.OrderLine, error) {
	var lines []*model.OrderLine
	err := r.db.WithContext(ctx).
		Order("id").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *orderRepoImpl) FindLinesByOrderID(ctx context.Context, tx *gorm.DB, orderID uint) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := conn(r.db, tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *orderRepoImpl) FindLinesByProductID(ctx context.Context, productID uint) ([]*model.OrderLine, error) {
	var lines []*model.OrderLine
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *orderRepoImpl) DeleteLine(ctx context.Context, tx *gorm.DB, lineID uint) error {
	result := conn(r.db, tx).WithContext(ctx).Delete(&model.OrderLine{}, lineID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
