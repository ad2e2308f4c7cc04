package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/identikit/user-service/internal/core/ports"
)

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createUserRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	FirstName  string `json:"first_name"`
	RoleID     string `json:"role_id"`
	CustomerID string `json:"customer_id"`
}

// updateUserRequest is a partial update: absent fields stay untouched, which
// is why every field is a pointer.
type updateUserRequest struct {
	Username   *string `json:"username"`
	Password   *string `json:"password"`
	FirstName  *string `json:"first_name"`
	RoleID     *string `json:"role_id"`
	CustomerID *string `json:"customer_id"`
}

type replaceUserRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	FirstName  string `json:"first_name"`
	RoleID     string `json:"role_id"`
	CustomerID string `json:"customer_id"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// --- Query parsing ---

// whereFromQuery builds the equality predicate from query parameters.
func whereFromQuery(c echo.Context) ports.UserWhere {
	return ports.UserWhere{
		Username:   c.QueryParam("username"),
		RoleID:     c.QueryParam("role_id"),
		CustomerID: c.QueryParam("customer_id"),
	}
}

// filterFromQuery builds the full read filter: predicate, paging, and which
// relations to hydrate (include=role,customer).
func filterFromQuery(c echo.Context) ports.UserFilter {
	filter := ports.UserFilter{Where: whereFromQuery(c)}

	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		filter.Limit = limit
	}
	if skip, err := strconv.Atoi(c.QueryParam("skip")); err == nil {
		filter.Skip = skip
	}

	for _, rel := range strings.Split(c.QueryParam("include"), ",") {
		switch strings.TrimSpace(rel) {
		case "role":
			filter.IncludeRole = true
		case "customer":
			filter.IncludeCustomer = true
		}
	}

	return filter
}

func (r updateUserRequest) toInput() ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Username:   r.Username,
		Password:   r.Password,
		FirstName:  r.FirstName,
		RoleID:     r.RoleID,
		CustomerID: r.CustomerID,
	}
}
