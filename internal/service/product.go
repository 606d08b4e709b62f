package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"

	"gorm.io/gorm"
)

type ProductService interface {
	List(ctx context.Context) ([]*model.Product, error)
	Get(ctx context.Context, productID uint) (*model.Product, error)
	Create(ctx context.Context, req dto.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, productID uint, req dto.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, productID uint) error
	ListByCategory(ctx context.Context, categoryID uint) ([]*model.Product, error)
	FirstPerCategory(ctx context.Context) ([]*dto.FirstProductByCategory, error)
	Search(ctx context.Context, filter string) ([]*model.Product, error)
	GroupedByCategory(ctx context.Context) (*dto.ProductGroups, error)

	// AdjustStock deducts quantity, failing with ErrNotFound or ErrInsufficientStock.
	AdjustStock(ctx context.Context, productID uint, quantity int64) (*model.Product, error)
	// ReduceStock deducts quantity, reporting every failure as ErrInvalidArgument.
	ReduceStock(ctx context.Context, productID uint, quantity int64) error
	Restock(ctx context.Context, productID uint, quantity int64) (*model.Product, error)
}

type productServiceImpl struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	policies     Policies
}

func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	policies Policies,
) ProductService {
	return &productServiceImpl{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		policies:     policies,
	}
}

func validateProduct(req dto.ProductRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return validateMoney("price", req.Price, false)
}

func (s *productServiceImpl) resolveCategories(ctx context.Context, tx *gorm.DB, refs []dto.Ref, policy ReconcilePolicy) ([]model.Category, error) {
	return reconcile(ctx, "category", dto.RefIDs(refs), policy,
		func(ctx context.Context, ids []uint) ([]*model.Category, error) {
			return s.categoryRepo.FindMany(ctx, tx, ids)
		},
		func(c *model.Category) uint { return c.ID },
	)
}

func (s *productServiceImpl) List(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *productServiceImpl) Get(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, nil, productID)
	if err != nil {
		return nil, notFoundOr(err, "product", productID)
	}
	return product, nil
}

func (s *productServiceImpl) Create(ctx context.Context, req dto.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Image:       req.Image,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := s.resolveCategories(ctx, tx, req.Categories, s.policies.OnCreate)
		if err != nil {
			return err
		}
		product.Categories = categories

		if err := s.productRepo.Create(ctx, tx, product); err != nil {
			return fmt.Errorf("store product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productServiceImpl) Update(ctx context.Context, productID uint, req dto.ProductRequest) (*model.Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindByID(ctx, tx, productID)
		if err != nil {
			return notFoundOr(err, "product", productID)
		}

		// every referenced category must resolve before anything is written
		categories, err := s.resolveCategories(ctx, tx, req.Categories, s.policies.OnUpdate)
		if err != nil {
			return err
		}

		existing.Name = req.Name
		existing.Description = req.Description
		existing.Price = req.Price
		existing.Stock = req.Stock
		existing.Image = req.Image
		existing.Categories = categories

		if err := s.productRepo.Update(ctx, tx, existing); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		product = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Delete(ctx, tx, productID); err != nil {
			return notFoundOr(err, "product", productID)
		}
		return nil
	})
}

func (s *productServiceImpl) ListByCategory(ctx context.Context, categoryID uint) ([]*model.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, notFoundOr(err, "category", categoryID)
	}
	return s.productRepo.FindByCategory(ctx, categoryID)
}

func (s *productServiceImpl) FirstPerCategory(ctx context.Context) ([]*dto.FirstProductByCategory, error) {
	return s.productRepo.FirstPerCategory(ctx)
}

func (s *productServiceImpl) Search(ctx context.Context, filter string) ([]*model.Product, error) {
	return s.productRepo.Search(ctx, filter)
}

func (s *productServiceImpl) GroupedByCategory(ctx context.Context) (*dto.ProductGroups, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	groups := dto.NewProductGroups()
	for _, product := range products {
		for _, category := range product.Categories {
			groups.Add(dto.ProductCard{
				ID:          product.ID,
				Title:       product.Name,
				Price:       product.Price,
				Category:    category.Name,
				Image:       product.Image,
				DetailLink:  "/product-detail/" + strconv.FormatUint(uint64(product.ID), 10),
				Description: product.Description,
			})
		}
	}

	return groups, nil
}

func (s *productServiceImpl) AdjustStock(ctx context.Context, productID uint, quantity int64) (*model.Product, error) {
	if err := validateField("quantity", quantity, "gt=0"); err != nil {
		return nil, err
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		decremented, err := s.productRepo.DecrementStock(ctx, tx, productID, quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		current, err := s.productRepo.FindByID(ctx, tx, productID)
		if err != nil {
			return notFoundOr(err, "product", productID)
		}
		if !decremented {
			return fmt.Errorf("product %d has %d in stock, %d requested: %w",
				productID, current.Stock, quantity, ErrInsufficientStock)
		}

		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "stock adjusted",
		"product_id", productID,
		"quantity", quantity,
		"stock", product.Stock,
	)
	return product, nil
}

func (s *productServiceImpl) ReduceStock(ctx context.Context, productID uint, quantity int64) error {
	if _, err := s.AdjustStock(ctx, productID, quantity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

func (s *productServiceImpl) Restock(ctx context.Context, productID uint, quantity int64) (*model.Product, error) {
	if err := validateField("quantity", quantity, "gt=0"); err != nil {
		return nil, err
	}

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.IncrementStock(ctx, tx, productID, quantity); err != nil {
			return notFoundOr(err, "product", productID)
		}

		current, err := s.productRepo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "stock replenished",
		"product_id", productID,
		"quantity", quantity,
		"stock", product.Stock,
	)
	return product, nil
}
