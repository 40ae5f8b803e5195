package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/accountkit/account-service/internal/api/middleware"
	"github.com/accountkit/account-service/internal/core/domain"
)

// ctxUser returns the account resolved by the Auth middleware. A missing user
// means the route was registered without Auth; report it as unauthenticated.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
