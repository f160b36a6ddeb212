package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	"github.com/bmlt-enabled/mayo-events-api/pkg/response"
)

type cacheClearer interface {
	ClearCache()
}

// CacheHandler exposes the admin cache invalidation endpoint.
type CacheHandler struct {
	resolver cacheClearer
	cache    *service.CacheService
}

// NewCacheHandler constructs the handler.
func NewCacheHandler(resolver cacheClearer, cache *service.CacheService) *CacheHandler {
	return &CacheHandler{resolver: resolver, cache: cache}
}

// Clear godoc
// @Summary Clear the service body and listing caches
// @Tags Cache
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /cache/clear [post]
func (h *CacheHandler) Clear(c *gin.Context) {
	if h.resolver != nil {
		h.resolver.ClearCache()
	}
	_ = h.cache.Invalidate(c.Request.Context(), "events:*")
	response.JSON(c, http.StatusOK, gin.H{"cleared": true}, nil)
}
