package handler

import (
	"net/http"
	"tienda-services/internal/service"

	"github.com/labstack/echo/v4"
)

// StockHandler serves the stock and storefront endpoints shared by the
// products and orders services.
type StockHandler struct {
	productService service.ProductService
}

func NewStockHandler(productService service.ProductService) *StockHandler {
	return &StockHandler{
		productService: productService,
	}
}

func (h *StockHandler) Register(api *echo.Group) {
	products := api.Group("/products")
	products.GET("/search", h.Search)
	products.GET("/grouped-by-category", h.GroupedByCategory)
	products.PUT("/:id/stock", h.AdjustStock)
	products.PUT("/:id/restock", h.Restock)
	products.PUT("/rebajar-stock/:id", h.ReduceStock)
}

// AdjustStock answers every failure with 400 and the plain error message.
func (h *StockHandler) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	quantity, err := parseIntQuery(c, "cantidad")
	if err != nil {
		return err
	}

	product, err := h.productService.AdjustStock(ctx, id, quantity)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, product)
}

// ReduceStock leaves failures to the central error handler.
func (h *StockHandler) ReduceStock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	quantity, err := parseIntQuery(c, "cantidad")
	if err != nil {
		return err
	}

	if err := h.productService.ReduceStock(ctx, id, quantity); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *StockHandler) Restock(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	quantity, err := parseIntQuery(c, "cantidad")
	if err != nil {
		return err
	}

	product, err := h.productService.Restock(ctx, id, quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *StockHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productService.Search(ctx, c.QueryParam("filtro"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *StockHandler) GroupedByCategory(c echo.Context) error {
	ctx := c.Request().Context()

	groups, err := h.productService.GroupedByCategory(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, groups)
}
