package licensing

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensing/internal/shared/constants"
	"github.com/orris-inc/licensing/internal/shared/errors"
)

// currentUserID returns the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) (uint, error) {
	v, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return 0, errors.NewUnauthorizedError("user not authenticated")
	}
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return 0, errors.NewUnauthorizedError("user not authenticated")
	}
	return userID, nil
}
