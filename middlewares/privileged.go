package middlewares

import (
	"context"
	"net/http"

	"civicsync/i18n"
	"civicsync/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const roleKey = "role"

type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (models.Role, error)
}

// RequirePrivileged lets officials and admins through. It must run after Auth.Required.
func RequirePrivileged(roles RoleResolver, messages *i18n.Bundle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			Abort(c, messages, http.StatusUnauthorized, i18n.NotAuthenticated)
			return
		}

		role, err := roles.ResolveRole(c.Request.Context(), userID)
		if err != nil {
			logger.Warn("role lookup failed", zap.String("user_id", userID), zap.Error(err))
			role = models.RoleCitizen
		}
		if !role.Privileged() {
			Abort(c, messages, http.StatusForbidden, i18n.Forbidden)
			return
		}

		c.Set(roleKey, role)
		c.Next()
	}
}
