package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"consignment-service/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register creates a consignor account --> /users
func (h *UserHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	user, err := h.userService.Register(c.Request().Context(), req.Name, req.Email, req.Password, "")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login logs in a user --> /login
func (h *UserHandler) Login(c echo.Context) error {
	login := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := c.Bind(&login); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	token, err := h.userService.Login(c.Request().Context(), login.Email, login.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// Logout revokes the caller's session --> /logout
func (h *UserHandler) Logout(c echo.Context) error {
	if err := h.userService.Logout(c.Request().Context(), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// ValidateSession confirms the caller's session is live --> /users/validate
func (h *UserHandler) ValidateSession(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Session is valid"})
}

// Me returns the caller's account --> /users/me
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.userService.GetUserByID(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
