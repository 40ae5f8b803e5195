package handler

import "github.com/accountkit/account-service/internal/core/domain"

// errorBody is the payload of a failed response: {"error": {"message": "..."}}.
type errorBody struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// dataResponse wraps every successful response body: {"data": ...}.
type dataResponse struct {
	Data any `json:"data"`
}

// --- Request / Response types ---

type registerRequest struct {
	Username       string `json:"username"       validate:"required"`
	Email          string `json:"email"          validate:"required,email"`
	Password       string `json:"password"       validate:"required"`
	PasswordRepeat string `json:"passwordRepeat" validate:"required,eqfield=Password"`
	Name           string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// selfUpdateRequest deliberately has no role, email or username field.
type selfUpdateRequest struct {
	Name *string `json:"name"`
}

type adminUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
}

type searchUsersRequest struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Page  int    `json:"page"  validate:"gte=0"`
	Limit int    `json:"limit" validate:"gte=0"`
}

type sessionResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type searchUsersResponse struct {
	Items      []*domain.User `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
