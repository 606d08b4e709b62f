package service

import (
	"context"
	"fmt"
	"log/slog"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error)
	Get(ctx context.Context, orderID uint) (*model.Order, error)
	List(ctx context.Context) ([]*model.Order, error)
	ListByEmail(ctx context.Context, email string) ([]*model.Order, error)
	ListByStatus(ctx context.Context, status int) ([]*model.Order, error)
	// UpdateStatus overwrites the status; no transition is refused.
	UpdateStatus(ctx context.Context, orderID uint, status int) error
	Delete(ctx context.Context, orderID uint) error
}

type orderServiceImpl struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	totalPolicy TotalPolicy
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	totalPolicy TotalPolicy,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		totalPolicy: totalPolicy,
	}
}

func parseStatus(status int) (model.OrderStatus, error) {
	s := model.OrderStatus(status)
	if !s.Valid() {
		return 0, fmt.Errorf("unknown order status %d: %w", status, ErrValidation)
	}
	return s, nil
}

// linePrice returns the requested unit price, or the catalog price when none was sent.
func linePrice(ctx context.Context, tx *gorm.DB, productRepo repository.ProductRepository, productID uint, price *decimal.Decimal) (decimal.Decimal, error) {
	if price != nil {
		if err := validateMoney("price", *price, true); err != nil {
			return decimal.Zero, err
		}
		return *price, nil
	}

	product, err := productRepo.FindByID(ctx, tx, productID)
	if err != nil {
		return decimal.Zero, notFoundOr(err, "product", productID)
	}
	return product.Price, nil
}

func (s *orderServiceImpl) Create(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if s.totalPolicy == TotalSupplied && req.Total != nil {
		if err := validateMoney("total", *req.Total, true); err != nil {
			return nil, err
		}
	}

	status := model.OrderStatusNew
	if req.Status != 0 {
		status = model.OrderStatus(req.Status)
	}

	order := &model.Order{
		Email:  req.Email,
		Status: status,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Lines {
			price, err := linePrice(ctx, tx, s.productRepo, item.ProductID, item.Price)
			if err != nil {
				return err
			}
			order.AddLine(model.NewOrderLine(item.ProductID, price, item.Quantity))
		}

		order.Total = order.ComputeTotal()
		if s.totalPolicy == TotalSupplied && req.Total != nil {
			order.Total = *req.Total
		}

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"lines", len(order.Lines),
		"total", order.Total.String(),
	)
	return order, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, nil, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order", orderID)
	}
	return order, nil
}

func (s *orderServiceImpl) List(ctx context.Context) ([]*model.Order, error) {
	return s.orderRepo.FindAll(ctx)
}

func (s *orderServiceImpl) ListByEmail(ctx context.Context, email string) ([]*model.Order, error) {
	return s.orderRepo.FindByEmail(ctx, email)
}

func (s *orderServiceImpl) ListByStatus(ctx context.Context, status int) ([]*model.Order, error) {
	parsed, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.FindByStatus(ctx, parsed)
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uint, status int) error {
	parsed, err := parseStatus(status)
	if err != nil {
		return err
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, parsed); err != nil {
		return notFoundOr(err, "order", orderID)
	}

	slog.InfoContext(ctx, "order status changed", "order_id", orderID, "status", parsed.String())
	return nil
}

func (s *orderServiceImpl) Delete(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Delete(ctx, tx, orderID); err != nil {
			return notFoundOr(err, "order", orderID)
		}
		return nil
	})
}
