package handler

import (
	"net/http"
	"tienda-services/internal/dto"
	"tienda-services/internal/service"

	"github.com/labstack/echo/v4"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
	}
}

func (h *RoleHandler) Register(api *echo.Group) {
	roles := api.Group("/roles")
	roles.GET("", h.ListRoles)
	roles.POST("", h.CreateRole)
	roles.GET("/:id", h.GetRole)
	roles.PUT("/:id", h.UpdateRole)
	roles.DELETE("/:id", h.DeleteRole)
}

func (h *RoleHandler) ListRoles(c echo.Context) error {
	ctx := c.Request().Context()

	roles, err := h.roleService.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) GetRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	role, err := h.roleService.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) CreateRole(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	role, err := h.roleService.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	role, err := h.roleService.Update(ctx, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DeleteRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.roleService.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
