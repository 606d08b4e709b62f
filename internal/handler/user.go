package handler

import (
	"net/http"
	"tienda-services/internal/dto"
	"tienda-services/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(api *echo.Group) {
	users := api.Group("/users")
	users.GET("", h.ListUsers)
	users.GET("/find", h.FindUserByEmail)
	users.GET("/exists", h.UserExists)
	users.POST("/register", h.RegisterUser)
	users.POST("/login", h.Login)
	users.PUT("/update/:id", h.UpdateUser)
	users.DELETE("/delete/:id", h.DeleteUser)
	users.GET("/:id", h.GetUser)
	users.GET("/:id/roles", h.GetUserRoles)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.userService.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userService.Get(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserRoles(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	roles, err := h.userService.Roles(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, roles)
}

func (h *UserHandler) FindUserByEmail(c echo.Context) error {
	ctx := c.Request().Context()

	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing email")
	}

	user, err := h.userService.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UserExists(c echo.Context) error {
	ctx := c.Request().Context()

	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing email")
	}

	exists, err := h.userService.Exists(ctx, email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, exists)
}

func (h *UserHandler) RegisterUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, err := h.userService.Register(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, err := h.userService.Update(ctx, id, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.userService.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
