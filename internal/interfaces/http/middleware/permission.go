package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensing/internal/shared/authorization"
	"github.com/orris-inc/licensing/internal/shared/constants"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

type PermissionMiddleware struct {
	enforcer authorization.Enforcer
	logger   logger.Interface
}

func NewPermissionMiddleware(enforcer authorization.Enforcer, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		enforcer: enforcer,
		logger:   logger,
	}
}

// RequireCapability lets the request through when the caller's role holds
// capability for action. It must run after RequireAuth.
func (m *PermissionMiddleware) RequireCapability(capability authorization.Capability, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(constants.ContextKeyUserRole)
		if role == "" {
			utils.ErrorResponseWithError(c, apperrors.NewUnauthorizedError("user not authenticated"))
			c.Abort()
			return
		}

		allowed, err := m.enforcer.Enforce(role, capability, action)
		if err != nil {
			m.logger.Errorw("capability check failed", "error", err, "role", role, "capability", capability, "action", action)
			utils.ErrorResponseWithError(c, apperrors.NewInternalError("permission check failed"))
			c.Abort()
			return
		}

		if !allowed {
			userID, _ := c.Get(constants.ContextKeyUserID)
			m.logger.Warnw("capability denied", "user_id", userID, "role", role, "capability", capability, "action", action)
			utils.ErrorResponseWithError(c, apperrors.NewForbiddenError("insufficient permissions", string(capability)+":"+action))
			c.Abort()
			return
		}

		c.Next()
	}
}
