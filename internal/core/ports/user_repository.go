package ports

import (
	"context"
	"time"

	"github.com/accountkit/account-service/internal/core/domain"
)

// UserChanges lists the fields to overwrite on a stored user. Nil fields are left
// untouched.
type UserChanges struct {
	Username  *string
	Email     *string
	Name      *string
	Role      *domain.Role
	UpdatedAt time.Time
}

// Fields returns the names of the fields set on c, in a stable order.
func (c UserChanges) Fields() []string {
	var out []string
	if c.Username != nil {
		out = append(out, "username")
	}
	if c.Email != nil {
		out = append(out, "email")
	}
	if c.Name != nil {
		out = append(out, "name")
	}
	if c.Role != nil {
		out = append(out, "role")
	}
	return out
}

// SearchUsersFilter carries the query parameters for listing users.
type SearchUsersFilter struct {
	Name  string      // optional: case-insensitive substring match
	Role  domain.Role // optional
	Page  int         // 1-based
	Limit int
}

// UserRepository persists accounts. Implementations return domain.ErrUserNotFound
// for unknown or malformed ids and domain.ErrUserExists on a uniqueness violation.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id string, changes UserChanges) error
	Delete(ctx context.Context, id string) error
	// Search returns a page of users matching filter and the total match count.
	Search(ctx context.Context, filter SearchUsersFilter) ([]*domain.User, int64, error)
}
