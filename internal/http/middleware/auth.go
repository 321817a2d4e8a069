package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cathealth/cathealth-backend/internal/http/response"
	"github.com/cathealth/cathealth-backend/internal/pkg/ctxutil"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/services"
)

type AuthMiddleware struct {
	log      *logger.Logger
	verifier services.TokenVerifier
}

func NewAuthMiddleware(log *logger.Logger, verifier services.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		log:      log.With("Middleware", "AuthMiddleware"),
		verifier: verifier,
	}
}

// RequireAuth rejects requests without a verifiable bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "missing or invalid token", Code: apierr.CodeAuthRequired},
			})
			return
		}
		ident, err := am.verifier.Verify(token)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: fmt.Sprintf("invalid token: %v", err), Code: apierr.CodeAuthRequired},
			})
			return
		}
		attachIdentity(c, ident)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// the request through either way; services decide whether an identity is
// mandatory.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if ident, err := am.verifier.Verify(token); err == nil {
				attachIdentity(c, ident)
			} else {
				am.log.Debug("Token ignored", "error", err)
			}
		}
		c.Next()
	}
}

func attachIdentity(c *gin.Context, ident *services.Identity) {
	rd := &ctxutil.RequestData{UserID: ident.UserID, UserEmail: ident.Email}
	c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
}

func ExtractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
