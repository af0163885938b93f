package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
)

// ShareParam is the query parameter carrying the tenant of a share link.
const ShareParam = "uid"

// ShareLinkTenant resolves the tenant of a share link (?uid=). An
// authenticated owner opening their own link keeps the owner scope; any
// other visitor gets the public scope of that tenant.
func ShareLinkTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query(ShareParam)
		if raw == "" {
			if _, ok := GetScope(c); ok {
				c.Next()
				return
			}
			response.BadRequest(c, "uid query parameter is required")
			c.Abort()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			response.BadRequest(c, "Invalid uid")
			c.Abort()
			return
		}

		if scope, ok := GetScope(c); ok && !scope.Public && scope.TenantID == tenantID {
			c.Next()
			return
		}
		setScope(c, entity.PublicScope(tenantID))
		c.Next()
	}
}

// GetTenantID retrieves the tenant ID from gin context
func GetTenantID(c *gin.Context) uuid.UUID {
	tenantID, exists := c.Get("tenant_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := tenantID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// GetScope retrieves the tenant scope bound by the auth or share-link
// middleware.
func GetScope(c *gin.Context) (entity.TenantScope, bool) {
	v, exists := c.Get("tenant_scope")
	if !exists {
		return entity.TenantScope{}, false
	}
	scope, ok := v.(entity.TenantScope)
	return scope, ok && scope.Valid()
}
