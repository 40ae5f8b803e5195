package ports

import (
	"context"

	"github.com/accountkit/account-service/internal/core/domain"
)

// SelfUpdateInput lists the fields an account holder may change on their own record.
type SelfUpdateInput struct {
	Name *string
}

// AdminUpdateInput lists the fields an admin may change on any record.
type AdminUpdateInput struct {
	Username *string
	Email    *string
	Name     *string
	Role     *string
}

// SearchUsersInput carries the parameters of the admin search endpoint.
type SearchUsersInput struct {
	Name  string
	Role  string
	Page  int
	Limit int
}

// SearchUsersResult is a single page of users.
type SearchUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines the account operations. The actor is always the user
// resolved from the caller's session; self operations never take a target id.
type UserService interface {
	UpdateSelf(ctx context.Context, actor *domain.User, input SelfUpdateInput) error
	DeleteSelf(ctx context.Context, actor *domain.User) error

	GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, actor *domain.User, id string, input AdminUpdateInput) error
	DeleteUser(ctx context.Context, actor *domain.User, id string) error
	SearchUsers(ctx context.Context, actor *domain.User, input SearchUsersInput) (*SearchUsersResult, error)
}
