package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidInput       = errors.New("invalid input")
)

// User models an account in the system. PasswordHash never leaves the
// service: it is excluded from JSON and only the store and the login flow
// ever read it.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	RoleID       string    `json:"role_id,omitempty"`
	CustomerID   string    `json:"customer_id,omitempty"`
	Role         *Role     `json:"role,omitempty"`
	Customer     *Customer `json:"customer,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is the referenced role document, hydrated when a query asks for it.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Customer is the referenced customer document, hydrated when a query asks for it.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
