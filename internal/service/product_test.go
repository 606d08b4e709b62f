package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"tienda-services/internal/client"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/repository"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type ProductServiceSuite struct {
	suite.Suite
	ctx          context.Context
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	svc          ProductService

	tools, garden *model.Category
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceSuite))
}

func (s *ProductServiceSuite) SetupTest() {
	s.ctx = context.Background()

	db := newTestDB(s.T(), client.ProductModels...)
	s.categoryRepo = repository.NewCategoryRepository(db)
	s.productRepo = repository.NewProductRepository(db)
	s.svc = NewProductService(db, s.productRepo, s.categoryRepo, DefaultPolicies())

	s.tools = createCategory(s.T(), s.categoryRepo, "Tools")
	s.garden = createCategory(s.T(), s.categoryRepo, "Garden")
}

func (s *ProductServiceSuite) createProduct(name string, stock int64, categoryIDs ...uint) *model.Product {
	product, err := s.svc.Create(s.ctx, productRequest(name, "100", stock, categoryIDs...))
	s.Require().NoError(err)
	return product
}

func (s *ProductServiceSuite) stockOf(productID uint) int64 {
	product, err := s.svc.Get(s.ctx, productID)
	s.Require().NoError(err)
	return product.Stock
}

func (s *ProductServiceSuite) TestAdjustStockDeducts() {
	product := s.createProduct("Hammer", 10)

	updated, err := s.svc.AdjustStock(s.ctx, product.ID, 5)
	s.Require().NoError(err)
	s.Equal(int64(5), updated.Stock)
	s.Equal(int64(5), s.stockOf(product.ID))
}

func (s *ProductServiceSuite) TestAdjustStockToZero() {
	product := s.createProduct("Hammer", 10)

	updated, err := s.svc.AdjustStock(s.ctx, product.ID, 10)
	s.Require().NoError(err)
	s.Equal(int64(0), updated.Stock)
}

func (s *ProductServiceSuite) TestAdjustStockInsufficientLeavesStock() {
	product := s.createProduct("Hammer", 10)

	_, err := s.svc.AdjustStock(s.ctx, product.ID, 999)
	s.Require().ErrorIs(err, ErrInsufficientStock)
	s.Contains(err.Error(), "has 10 in stock")
	s.Equal(int64(10), s.stockOf(product.ID))
}

func (s *ProductServiceSuite) TestAdjustStockMissingProduct() {
	_, err := s.svc.AdjustStock(s.ctx, 9999, 1)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceSuite) TestAdjustStockRejectsNonPositiveQuantity() {
	product := s.createProduct("Hammer", 10)

	_, err := s.svc.AdjustStock(s.ctx, product.ID, 0)
	s.ErrorIs(err, ErrValidation)
	_, err = s.svc.AdjustStock(s.ctx, product.ID, -3)
	s.ErrorIs(err, ErrValidation)
	s.Equal(int64(10), s.stockOf(product.ID))
}

func (s *ProductServiceSuite) TestReduceStockReportsInvalidArgument() {
	product := s.createProduct("Hammer", 2)

	s.Require().NoError(s.svc.ReduceStock(s.ctx, product.ID, 1))
	s.Equal(int64(1), s.stockOf(product.ID))

	err := s.svc.ReduceStock(s.ctx, product.ID, 5)
	s.ErrorIs(err, ErrInvalidArgument)
	s.ErrorIs(err, ErrInsufficientStock)

	err = s.svc.ReduceStock(s.ctx, 9999, 1)
	s.ErrorIs(err, ErrInvalidArgument)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceSuite) TestRestock() {
	product := s.createProduct("Hammer", 1)

	updated, err := s.svc.Restock(s.ctx, product.ID, 4)
	s.Require().NoError(err)
	s.Equal(int64(5), updated.Stock)

	_, err = s.svc.Restock(s.ctx, 9999, 4)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceSuite) TestConcurrentAdjustNeverOversells() {
	defer goleak.VerifyNone(s.T(), goleak.IgnoreCurrent())

	product := s.createProduct("Hammer", 10)

	const buyers = 25
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		sold, shed int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.AdjustStock(s.ctx, product.ID, 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, ErrInsufficientStock):
				shed++
			}
		}()
	}
	wg.Wait()

	s.Equal(10, sold)
	s.Equal(buyers-10, shed)
	s.Equal(int64(0), s.stockOf(product.ID))
}

func (s *ProductServiceSuite) TestCreateDropsUnknownCategories() {
	product := s.createProduct("Hammer", 1, s.tools.ID, 999, s.tools.ID)

	s.Equal([]string{"Tools"}, categoryNames(product.Categories))

	stored, err := s.svc.Get(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal([]uint{s.tools.ID}, categoryIDs(stored))
}

func (s *ProductServiceSuite) TestUpdateWithUnknownCategoryChangesNothing() {
	product := s.createProduct("Hammer", 1, s.tools.ID)

	req := productRequest("Sledgehammer", "150", 3, s.garden.ID, 999)
	_, err := s.svc.Update(s.ctx, product.ID, req)
	s.Require().ErrorIs(err, ErrNotFound)

	stored, err := s.svc.Get(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal("Hammer", stored.Name)
	s.Equal(int64(1), stored.Stock)
	s.Equal([]uint{s.tools.ID}, categoryIDs(stored))
}

func (s *ProductServiceSuite) TestUpdateReplacesCategorySet() {
	product := s.createProduct("Hammer", 1, s.tools.ID)

	req := productRequest("Hammer", "120", 7, s.garden.ID)
	updated, err := s.svc.Update(s.ctx, product.ID, req)
	s.Require().NoError(err)
	s.Equal([]string{"Garden"}, categoryNames(updated.Categories))

	// same request again resolves to the same set
	_, err = s.svc.Update(s.ctx, product.ID, req)
	s.Require().NoError(err)

	stored, err := s.svc.Get(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal([]uint{s.garden.ID}, categoryIDs(stored))
	s.Equal(int64(7), stored.Stock)
	s.True(price("120").Equal(stored.Price))

	tools, err := s.svc.ListByCategory(s.ctx, s.tools.ID)
	s.Require().NoError(err)
	s.Empty(tools)
}

func (s *ProductServiceSuite) TestUpdateMissingProduct() {
	_, err := s.svc.Update(s.ctx, 9999, productRequest("Hammer", "1", 1))
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceSuite) TestCreateValidation() {
	cases := map[string]func(r *dto.ProductRequest){
		"blank name":        func(r *dto.ProductRequest) { r.Name = " " },
		"blank description": func(r *dto.ProductRequest) { r.Description = "" },
		"blank image":       func(r *dto.ProductRequest) { r.Image = "" },
		"zero price":        func(r *dto.ProductRequest) { r.Price = price("0") },
		"negative stock":    func(r *dto.ProductRequest) { r.Stock = -1 },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			req := productRequest("Hammer", "10", 1)
			mutate(&req)

			_, err := s.svc.Create(s.ctx, req)
			s.ErrorIs(err, ErrValidation)
		})
	}

	products, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(products)
}

func (s *ProductServiceSuite) TestDeleteDetachesCategories() {
	product := s.createProduct("Hammer", 1, s.tools.ID, s.garden.ID)

	s.Require().NoError(s.svc.Delete(s.ctx, product.ID))

	_, err := s.svc.Get(s.ctx, product.ID)
	s.ErrorIs(err, ErrNotFound)

	tools, err := s.svc.ListByCategory(s.ctx, s.tools.ID)
	s.Require().NoError(err)
	s.Empty(tools)

	s.ErrorIs(s.svc.Delete(s.ctx, product.ID), ErrNotFound)
}

func (s *ProductServiceSuite) TestListByCategory() {
	hammer := s.createProduct("Hammer", 1, s.tools.ID)
	s.createProduct("Rake", 1, s.garden.ID)
	saw := s.createProduct("Saw", 1, s.tools.ID, s.garden.ID)

	products, err := s.svc.ListByCategory(s.ctx, s.tools.ID)
	s.Require().NoError(err)
	s.Require().Len(products, 2)
	s.Equal(hammer.ID, products[0].ID)
	s.Equal(saw.ID, products[1].ID)

	_, err = s.svc.ListByCategory(s.ctx, 9999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *ProductServiceSuite) TestSearchMatchesProductAndCategoryNames() {
	hammer := s.createProduct("Claw Hammer", 1, s.tools.ID)
	rake := s.createProduct("Rake", 1, s.garden.ID)
	loose := s.createProduct("Loose Hammer", 1)

	byName, err := s.svc.Search(s.ctx, "HAMMER")
	s.Require().NoError(err)
	s.Require().Len(byName, 2)
	s.Equal(hammer.ID, byName[0].ID)
	s.Equal(loose.ID, byName[1].ID)

	byCategory, err := s.svc.Search(s.ctx, "gard")
	s.Require().NoError(err)
	s.Require().Len(byCategory, 1)
	s.Equal(rake.ID, byCategory[0].ID)
}

func (s *ProductServiceSuite) TestFirstPerCategory() {
	hammer := s.createProduct("Hammer", 1, s.tools.ID)
	rake := s.createProduct("Rake", 1, s.garden.ID)
	s.createProduct("Saw", 1, s.tools.ID, s.garden.ID)

	rows, err := s.svc.FirstPerCategory(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)

	s.Equal(s.tools.ID, rows[0].CategoryID)
	s.Equal(hammer.ID, rows[0].ProductID)
	s.Equal("Hammer", rows[0].ProductName)
	s.Equal(s.garden.ID, rows[1].CategoryID)
	s.Equal(rake.ID, rows[1].ProductID)
	s.Equal("Rake.png", rows[1].ProductImage)
}

func (s *ProductServiceSuite) TestGroupedByCategory() {
	saw := s.createProduct("Saw", 1, s.tools.ID, s.garden.ID)
	s.createProduct("Unlisted", 1)

	groups, err := s.svc.GroupedByCategory(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, groups.Len())
	s.Require().Len(groups.Cards("Tools"), 1)

	card := groups.Cards("Garden")[0]
	s.Equal(saw.ID, card.ID)
	s.Equal("Saw", card.Title)
	s.Equal("Garden", card.Category)
	s.Equal("/product-detail/1", card.DetailLink)
}

func (s *ProductServiceSuite) TestGroupedByCategoryKeepsFirstSeenOrder() {
	zebra := createCategory(s.T(), s.categoryRepo, "Zebra")
	s.createProduct("Brush", 1, zebra.ID)
	s.createProduct("Saw", 1, s.tools.ID)
	s.createProduct("Stripe", 1, zebra.ID)

	groups, err := s.svc.GroupedByCategory(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Zebra", "Tools"}, groups.Names())
	s.Len(groups.Cards("Zebra"), 2)

	body, err := json.Marshal(groups)
	s.Require().NoError(err)
	s.Less(strings.Index(string(body), `"Zebra"`), strings.Index(string(body), `"Tools"`))

	var decoded map[string][]dto.ProductCard
	s.Require().NoError(json.Unmarshal(body, &decoded))
	s.Len(decoded["Zebra"], 2)
	s.Equal("Saw", decoded["Tools"][0].Title)
}

func (s *ProductServiceSuite) TestPriceMustFitCents() {
	_, err := s.svc.Create(s.ctx, productRequest("Hammer", "9.999", 1))
	s.ErrorIs(err, ErrValidation)

	product := s.createProduct("Hammer", 1)
	_, err = s.svc.Update(s.ctx, product.ID, productRequest("Hammer", "0.001", 1))
	s.ErrorIs(err, ErrValidation)
}
