package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggledger/internal/auth"
	"github.com/mamadbah2/eggledger/internal/domain/models"
)

const roleKey = "role"

var errInvalidHeader = fmt.Errorf("%w: malformed authorization header", auth.ErrInvalidToken)

// TokenParser turns a session token back into a role.
type TokenParser interface {
	Parse(token string) (models.Role, error)
}

// SessionMiddleware resolves the caller's role from the bearer token.
// Requests without a token are guests; a bad token is rejected outright.
func SessionMiddleware(tokens TokenParser, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(roleKey, models.RoleGuest)
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(c, logger, errInvalidHeader)
			c.Abort()
			return
		}

		role, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			logger.Debug("session token rejected", zap.Error(err))
			writeError(c, logger, err)
			c.Abort()
			return
		}

		c.Set(roleKey, role)
		c.Next()
	}
}

// RoleFrom returns the role set by SessionMiddleware, guest when absent.
func RoleFrom(c *gin.Context) models.Role {
	if v, ok := c.Get(roleKey); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return models.RoleGuest
}
