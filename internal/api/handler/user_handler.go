package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accountkit/account-service/internal/core/ports"
)

type UserHandler struct {
	auth  ports.AuthService
	users ports.UserService
}

func NewUserHandler(auth ports.AuthService, users ports.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Signup details"
// @Success      200   {object}  dataResponse{data=domain.User}
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		PasswordRepeat: req.PasswordRepeat,
		Name:           req.Name,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dataResponse{Data: user})
}

// Login authenticates by email and password and returns a session token.
//
// @Summary      Create a session
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  dataResponse{data=sessionResponse}
// @Failure      401   {object}  errorResponse
// @Router       /users/sessions [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dataResponse{Data: sessionResponse{User: user, Token: token}})
}

// GetSelf returns the caller's own account.
//
// @Summary      Get my account
// @Tags         self
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse{data=domain.User}
// @Failure      401  {object}  errorResponse
// @Router       /users/self [get]
func (h *UserHandler) GetSelf(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: user})
}

// UpdateSelf changes the caller's own profile.
//
// @Summary      Update my account
// @Tags         self
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  selfUpdateRequest  true  "Fields to change"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/self [post]
func (h *UserHandler) UpdateSelf(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req selfUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.users.UpdateSelf(c.Request().Context(), user, ports.SelfUpdateInput{Name: req.Name}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteSelf removes the caller's own account.
//
// @Summary      Delete my account
// @Tags         self
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /users/self [delete]
func (h *UserHandler) DeleteSelf(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteSelf(c.Request().Context(), user); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetUser returns any account by id.
//
// @Summary      Get a user (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  dataResponse{data=domain.User}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: user})
}

// UpdateUser changes any account by id.
//
// @Summary      Update a user (admin)
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string              true  "User id"
// @Param        body  body  adminUpdateRequest  true  "Fields to change"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /users/{id} [post]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req adminUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.users.UpdateUser(c.Request().Context(), actor, c.Param("id"), ports.AdminUpdateInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUser removes any account by id.
//
// @Summary      Delete a user (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  dataResponse{data=successResponse}
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: successResponse{Success: true}})
}

// SearchUsers lists accounts page by page.
//
// @Summary      Search users (admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      searchUsersRequest  true  "Filters and paging"
// @Success      200   {object}  dataResponse{data=searchUsersResponse}
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /users/search [post]
func (h *UserHandler) SearchUsers(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req searchUsersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.users.SearchUsers(c.Request().Context(), actor, ports.SearchUsersInput{
		Name:  req.Name,
		Role:  req.Role,
		Page:  req.Page,
		Limit: req.Limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dataResponse{Data: searchUsersResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	}})
}
