package service

import (
	"context"
	"fmt"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"

	"gorm.io/gorm"
)

type OrderLineService interface {
	Create(ctx context.Context, req dto.CreateOrderLineRequest) (*model.OrderLine, error)
	Get(ctx context.Context, lineID uint) (*model.OrderLine, error)
	List(ctx context.Context) ([]*model.OrderLine, error)
	ListByOrder(ctx context.Context, orderID uint) ([]model.OrderLine, error)
	ListByProduct(ctx context.Context, productID uint) ([]*model.OrderLine, error)
	Delete(ctx context.Context, lineID uint) error
}

type orderLineServiceImpl struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	totalPolicy TotalPolicy
}

func NewOrderLineService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	totalPolicy TotalPolicy,
) OrderLineService {
	return &orderLineServiceImpl{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		totalPolicy: totalPolicy,
	}
}

// syncTotal stores the sum of the order's persisted lines when totals are computed.
func (s *orderLineServiceImpl) syncTotal(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if s.totalPolicy != TotalComputed {
		return nil
	}

	total, err := s.orderRepo.RecomputeTotal(ctx, tx, order.ID)
	if err != nil {
		return fmt.Errorf("update order total: %w", err)
	}
	order.Total = total
	return nil
}

func (s *orderLineServiceImpl) Create(ctx context.Context, req dto.CreateOrderLineRequest) (*model.OrderLine, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var line model.OrderLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByID(ctx, tx, req.OrderID)
		if err != nil {
			return notFoundOr(err, "order", req.OrderID)
		}

		price, err := linePrice(ctx, tx, s.productRepo, req.ProductID, req.Price)
		if err != nil {
			return err
		}

		order.AddLine(model.NewOrderLine(req.ProductID, price, req.Quantity))
		added := &order.Lines[len(order.Lines)-1]
		if err := s.orderRepo.CreateLine(ctx, tx, added); err != nil {
			return fmt.Errorf("store order line: %w", err)
		}
		line = *added

		return s.syncTotal(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (s *orderLineServiceImpl) Get(ctx context.Context, lineID uint) (*model.OrderLine, error) {
	line, err := s.orderRepo.FindLineByID(ctx, nil, lineID)
	if err != nil {
		return nil, notFoundOr(err, "order line", lineID)
	}
	return line, nil
}

func (s *orderLineServiceImpl) List(ctx context.Context) ([]*model.OrderLine, error) {
	return s.orderRepo.FindLines(ctx)
}

func (s *orderLineServiceImpl) ListByOrder(ctx context.Context, orderID uint) ([]model.OrderLine, error) {
	return s.orderRepo.FindLinesByOrderID(ctx, nil, orderID)
}

func (s *orderLineServiceImpl) ListByProduct(ctx context.Context, productID uint) ([]*model.OrderLine, error) {
	return s.orderRepo.FindLinesByProductID(ctx, productID)
}

func (s *orderLineServiceImpl) Delete(ctx context.Context, lineID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := s.orderRepo.FindLineByID(ctx, tx, lineID)
		if err != nil {
			return notFoundOr(err, "order line", lineID)
		}

		order, err := s.orderRepo.FindByID(ctx, tx, line.OrderID)
		if err != nil {
			return notFoundOr(err, "order", line.OrderID)
		}
		order.RemoveLine(lineID)

		if err := s.orderRepo.DeleteLine(ctx, tx, lineID); err != nil {
			return notFoundOr(err, "order line", lineID)
		}

		return s.syncTotal(ctx, tx, order)
	})
}
