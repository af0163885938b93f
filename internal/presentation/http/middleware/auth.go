package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/utils"
)

const ownerEmailKey = "owner_email"

// AuthMiddleware authenticates the tenant owner by bearer token and binds
// the owner scope to the request.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, message := bearerClaims(c, jwtManager)
		if claims == nil {
			response.Unauthorized(c, message)
			c.Abort()
			return
		}

		c.Set(ownerEmailKey, claims.Email)
		setScope(c, entity.OwnerScope(claims.TenantID))
		c.Next()
	}
}

// OptionalAuthMiddleware binds the owner scope when a valid token is
// present and leaves the request anonymous otherwise.
func OptionalAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _ := bearerClaims(c, jwtManager); claims != nil {
			c.Set(ownerEmailKey, claims.Email)
			setScope(c, entity.OwnerScope(claims.TenantID))
		}
		c.Next()
	}
}

// RequireOwner rejects requests bound to a public scope.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := GetScope(c)
		if !ok {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}
		if scope.Public {
			response.Error(c, apperror.ErrPublicReadOnly)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwtManager *utils.JWTManager) (*utils.JWTClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "Authorization header is required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, "Invalid authorization header format"
	}

	claims, err := jwtManager.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, "Invalid or expired token"
	}
	return claims, ""
}

// setScope binds the scope to the gin context. Handlers pass the tenant
// explicitly to services, which filter with repository.ForTenant.
func setScope(c *gin.Context, scope entity.TenantScope) {
	c.Set("tenant_id", scope.TenantID)
	c.Set("tenant_scope", scope)
}
