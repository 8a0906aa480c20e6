package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"civicsync/i18n"
	"civicsync/middlewares"
	"civicsync/models"
	"civicsync/store"
	"civicsync/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, userID string) (models.User, error)
	UpdateSettings(ctx context.Context, userID string, update store.SettingsUpdate) (models.User, error)
}

type TokenIssuer interface {
	Generate(userID string) (string, utils.Claims, error)
	TTL() time.Duration
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// CookieOptions controls the auth_token cookie.
type CookieOptions struct {
	Domain string
	Secure bool
}

// CookieOptionsFor mirrors how the API is deployed: production serves HTTPS
// to a different origin, so the cookie is Secure and host-only.
func CookieOptionsFor(env, domain string) CookieOptions {
	if env == "production" {
		return CookieOptions{Secure: true}
	}
	return CookieOptions{Domain: domain}
}

type AuthController struct {
	responder
	users   UserStore
	tokens  TokenIssuer
	revoker TokenRevoker
	cookie  CookieOptions
}

func NewAuthController(users UserStore, tokens TokenIssuer, revoker TokenRevoker, cookie CookieOptions, messages *i18n.Bundle, logger *zap.Logger) *AuthController {
	return &AuthController{
		responder: newResponder(messages, logger),
		users:     users,
		tokens:    tokens,
		revoker:   revoker,
		cookie:    cookie,
	}
}

type userResponse struct {
	ID          string      `json:"id"`
	DisplayName *string     `json:"displayName,omitempty"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	Language    string      `json:"language"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func presentUser(u models.User) userResponse {
	lang := u.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}
	return userResponse{
		ID:          u.ID.Hex(),
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
		Language:    lang,
		CreatedAt:   u.CreatedAt,
	}
}

// RegisterUser handles user registration
func (h *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidRequest)
		return
	}

	if models.Role(strings.ToLower(input.Role)) == models.RoleAdmin {
		h.fail(c, http.StatusForbidden, i18n.AdminNotAllowed)
		return
	}

	user := models.User{
		Email:    input.Email,
		Password: input.Password,
		Role:     models.NormalizeRole(strings.ToLower(input.Role)),
		Language: i18n.DefaultLanguage,
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.DisplayName = &name
	}
	if err := user.HashPassword(); err != nil {
		h.logger.Error("hash password", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, i18n.SomethingWentWrong)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			h.fail(c, http.StatusConflict, i18n.EmailTaken)
			return
		}
		h.storeFailure(c, err, i18n.UserNotFound, "create user")
		return
	}

	c.JSON(http.StatusCreated, presentUser(user))
}

// LoginUser issues a session token in the body and the auth_token cookie.
func (h *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidRequest)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.FindUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.fail(c, http.StatusUnauthorized, i18n.InvalidCredentials)
			return
		}
		h.storeFailure(c, err, i18n.UserNotFound, "find user")
		return
	}
	if !user.ComparePassword(input.Password) {
		h.fail(c, http.StatusUnauthorized, i18n.InvalidCredentials)
		return
	}

	token, claims, err := h.tokens.Generate(user.ID.Hex())
	if err != nil {
		h.logger.Error("generate token", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, i18n.SomethingWentWrong)
		return
	}

	h.setCookie(c, token, int(h.tokens.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": claims.ExpiresAt,
		"user":      presentUser(user),
	})
}

// GetMe retrieves the authenticated user's information
func (h *AuthController) GetMe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.FindUserByID(ctx, middlewares.UserID(c))
	if err != nil {
		h.storeFailure(c, err, i18n.UserNotFound, "find user")
		return
	}
	c.JSON(http.StatusOK, presentUser(user))
}

// LogoutUser revokes the current token and clears the cookie.
func (h *AuthController) LogoutUser(c *gin.Context) {
	if claims, ok := middlewares.TokenClaims(c); ok && h.revoker != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := h.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
			h.logger.Error("revoke token", zap.Error(err))
			h.fail(c, http.StatusInternalServerError, i18n.SomethingWentWrong)
			return
		}
	}

	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": h.messages.T(middlewares.Lang(c), i18n.LoggedOut)})
}

// UpdateSettings changes the caller's display name and language.
func (h *AuthController) UpdateSettings(c *gin.Context) {
	var input struct {
		DisplayName *string `json:"displayName" binding:"omitempty,max=50"`
		Language    *string `json:"language"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidRequest)
		return
	}
	if input.Language != nil && !h.messages.Supports(*input.Language) {
		h.fail(c, http.StatusBadRequest, i18n.InvalidLanguage)
		return
	}

	update := store.SettingsUpdate{Language: input.Language}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		update.DisplayName = &name
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.users.UpdateSettings(ctx, middlewares.UserID(c), update)
	if err != nil {
		h.storeFailure(c, err, i18n.UserNotFound, "update settings")
		return
	}
	c.JSON(http.StatusOK, presentUser(user))
}

func (h *AuthController) setCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.AuthCookie,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Domain:   h.cookie.Domain,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite,
	})
}
