package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/response"
)

// AuthHandler proxies the upstream auth endpoints and manages the token
// cookies the route guard relies on.
type AuthHandler struct {
	hub      *store.Hub
	validate *validator.Validate
	jwtCfg   config.JWTConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(hub *store.Hub, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{hub: hub, validate: validator.New(), jwtCfg: jwtCfg}
}

// Login godoc
// @Summary Sign in
// @Description Authenticate against the NgajiQu backend and set token cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "username and password are required"))
		return
	}

	set := storeSet(c, h.hub)
	res, err := set.Auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setTokenCookies(c, res.Tokens)
	response.JSON(c, http.StatusOK, res.User, nil)
}

// Register godoc
// @Summary Create account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Account payload"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid register payload"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "email, username and a password of 8+ characters are required"))
		return
	}

	set := storeSet(c, h.hub)
	res, err := set.Auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setTokenCookies(c, res.Tokens)
	response.Created(c, res.User)
}

// Refresh godoc
// @Summary Rotate the token pair
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(h.jwtCfg.RefreshCookie)
	if err != nil || refresh == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrAuthRequired, "no refresh token"))
		return
	}

	set := storeSet(c, h.hub)
	tokens, err := set.Auth.Refresh(c.Request.Context(), refresh)
	if err != nil {
		h.clearTokenCookies(c)
		response.Error(c, err)
		return
	}

	h.setTokenCookies(c, *tokens)
	response.JSON(c, http.StatusOK, gin.H{"refreshed": true}, nil)
}

// Logout godoc
// @Summary Sign out
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	set := storeSet(c, h.hub)
	set.Auth.Logout(c.Request.Context())
	h.clearTokenCookies(c)
	response.NoContent(c)
}

// Me godoc
// @Summary Current identity
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	set := storeSet(c, h.hub)
	state := set.Auth.State()
	response.JSON(c, http.StatusOK, gin.H{"user": state.User, "isAuth": state.IsAuth}, nil)
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, tokens models.AuthTokens) {
	c.SetCookie(h.jwtCfg.AccessCookie, tokens.AccessToken, 0, "/", h.jwtCfg.CookieDomain, h.jwtCfg.CookieSecure, true)
	c.SetCookie(h.jwtCfg.RefreshCookie, tokens.RefreshToken, 0, "/", h.jwtCfg.CookieDomain, h.jwtCfg.CookieSecure, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetCookie(h.jwtCfg.AccessCookie, "", -1, "/", h.jwtCfg.CookieDomain, h.jwtCfg.CookieSecure, true)
	c.SetCookie(h.jwtCfg.RefreshCookie, "", -1, "/", h.jwtCfg.CookieDomain, h.jwtCfg.CookieSecure, true)
}
