package handler

import (
	"net/http"
	"strconv"
	"tienda-services/internal/dto"
	"tienda-services/internal/model"
	"tienda-services/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService     service.OrderService
	orderLineService service.OrderLineService
}

func NewOrderHandler(orderService service.OrderService, orderLineService service.OrderLineService) *OrderHandler {
	return &OrderHandler{
		orderService:     orderService,
		orderLineService: orderLineService,
	}
}

func (h *OrderHandler) Register(api *echo.Group) {
	orders := api.Group("/pedidos")
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/estado/:estado", h.ListOrdersByStatus)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id/estado", h.UpdateOrderStatus)
	orders.DELETE("/:id", h.DeleteOrder)

	lines := orders.Group("/detalles")
	lines.POST("", h.CreateOrderLine)
	lines.GET("", h.ListOrderLines)
	lines.GET("/orden/:idOrden", h.ListOrderLinesByOrder)
	lines.GET("/producto/:idProducto", h.ListOrderLinesByProduct)
	lines.GET("/:id", h.GetOrderLine)
	lines.DELETE("/:id", h.DeleteOrderLine)
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		orders []*model.Order
		err    error
	)
	if email := c.QueryParam("email"); email != "" {
		orders, err = h.orderService.ListByEmail(ctx, email)
	} else {
		orders, err = h.orderService.List(ctx)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrdersByStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := strconv.Atoi(c.Param("estado"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid estado")
	}

	orders, err := h.orderService.ListByStatus(ctx, status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	status, err := parseIntQuery(c, "estado")
	if err != nil {
		return err
	}

	if err := h.orderService.UpdateStatus(ctx, id, int(status)); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.orderService.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) CreateOrderLine(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderLineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	line, err := h.orderLineService.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, line)
}

func (h *OrderHandler) ListOrderLines(c echo.Context) error {
	ctx := c.Request().Context()

	lines, err := h.orderLineService.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lines)
}

func (h *OrderHandler) GetOrderLine(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	line, err := h.orderLineService.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, line)
}

func (h *OrderHandler) ListOrderLinesByOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := parseID(c, "idOrden")
	if err != nil {
		return err
	}

	lines, err := h.orderLineService.ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lines)
}

func (h *OrderHandler) ListOrderLinesByProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := parseID(c, "idProducto")
	if err != nil {
		return err
	}

	lines, err := h.orderLineService.ListByProduct(ctx, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lines)
}

func (h *OrderHandler) DeleteOrderLine(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.orderLineService.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
