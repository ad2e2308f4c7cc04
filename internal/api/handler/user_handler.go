package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identikit/user-service/internal/api/metrics"
	"github.com/identikit/user-service/internal/api/middleware"
	"github.com/identikit/user-service/internal/core/ports"
)

// UserHandler handles HTTP requests for user operations. It binds and
// validates payloads, delegates to the service, and leaves error rendering to
// the central error handler.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Login authenticates with username and password and returns a session token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]any
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	token, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

// Logout revokes the bearer token the request was authenticated with.
//
// @Summary      Logout
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	token, expiresAt := middleware.TokenFromContext(c)
	if err := h.service.Logout(c.Request().Context(), token, expiresAt); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Create registers a new user. Open by design: this is the registration
// endpoint.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      200   {object}  domain.User
// @Failure      409   {object}  map[string]any
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.Register(c.Request().Context(), ports.RegisterUserInput{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		RoleID:     req.RoleID,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.Inc()
	return c.JSON(http.StatusOK, user)
}

// Count returns the number of users matching the query predicate.
//
// @Summary      Count users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  countResponse
// @Router       /users/count [get]
func (h *UserHandler) Count(c echo.Context) error {
	count, err := h.service.Count(c.Request().Context(), whereFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Count: count})
}

// List returns the users matching the query, with requested relations
// hydrated.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        include  query  string  false  "Relations to include (role,customer)"
// @Success      200  {array}  domain.User
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateAll applies a partial update to every user matching the predicate and
// returns how many were updated.
//
// @Summary      Bulk-update users
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  countResponse
// @Router       /users [patch]
func (h *UserHandler) UpdateAll(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	count, err := h.service.UpdateAll(c.Request().Context(), req.toInput(), whereFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Count: count})
}

// Get returns a single user by identifier.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]any
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"), filterFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies a partial update to a single user.
//
// @Summary      Patch a user
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string             true  "User ID"
// @Param        body  body  updateUserRequest  true  "Fields to update"
// @Success      204
// @Failure      404  {object}  map[string]any
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Replace overwrites all mutable fields of a single user.
//
// @Summary      Replace a user
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string              true  "User ID"
// @Param        body  body  replaceUserRequest  true  "Full user"
// @Success      204
// @Failure      404  {object}  map[string]any
// @Router       /users/{id} [put]
func (h *UserHandler) Replace(c echo.Context) error {
	var req replaceUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	err := h.service.Replace(c.Request().Context(), c.Param("id"), ports.ReplaceUserInput{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		RoleID:     req.RoleID,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a single user.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  map[string]any
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
