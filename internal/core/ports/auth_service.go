package ports

import (
	"context"

	"github.com/accountkit/account-service/internal/core/domain"
)

// RegisterInput is the signup payload passed from the transport layer.
type RegisterInput struct {
	Username       string
	Email          string
	Password       string
	PasswordRepeat string
	Name           string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Authenticate resolves a session token to the user it was issued for.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
