package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/internal/presentation/http/middleware"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// ownerTenant returns the tenant of an authenticated owner, writing a 401
// when the request has none.
func ownerTenant(c *gin.Context) (uuid.UUID, bool) {
	scope, ok := middleware.GetScope(c)
	if !ok || scope.Public {
		response.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return scope.TenantID, true
}

// pathID parses a uuid path parameter, writing a 400 when it is malformed.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}
