package http

import (
	"net/http"

	"world-vlog/usecase"

	"github.com/gin-gonic/gin"
)

type IAdminHandler interface {
	RebuildPool(ctx *gin.Context)
	FlushMemoryCache(ctx *gin.Context)
	CacheStats(ctx *gin.Context)
}

type AdminHandler struct {
	videoUseCase usecase.IVideoUseCase
	poolUseCase  usecase.IRandomPoolUseCase
}

func NewAdminHandler(videoUseCase usecase.IVideoUseCase, poolUseCase usecase.IRandomPoolUseCase) IAdminHandler {
	return &AdminHandler{videoUseCase: videoUseCase, poolUseCase: poolUseCase}
}

// RebuildPool handles POST /admin/pool/rebuild
func (h *AdminHandler) RebuildPool(ctx *gin.Context) {
	n, err := h.poolUseCase.Rebuild(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to rebuild random pool",
			"message": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "poolSize": n})
}

// FlushMemoryCache handles DELETE /admin/cache/memory
func (h *AdminHandler) FlushMemoryCache(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "flushed": h.videoUseCase.FlushMemoryCache()})
}

// CacheStats handles GET /admin/cache/stats
func (h *AdminHandler) CacheStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.videoUseCase.CacheStats())
}
