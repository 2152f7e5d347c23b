package models

// User is the authenticated teacher identity as reported by the upstream.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Description string `json:"description"`
}

// LoginRequest holds credentials forwarded to the upstream auth endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new teacher account upstream.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthTokens carries the opaque token pair issued upstream.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is the upstream auth response: tokens plus the user they
// belong to.
type AuthResult struct {
	User   User       `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}

// AuthState is the durable auth blob mirrored into session storage.
type AuthState struct {
	User   *User  `json:"user"`
	Token  string `json:"token"`
	IsAuth bool   `json:"isAuth"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
