package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"world-vlog/domain/dto"
	"world-vlog/domain/model"
	"world-vlog/infrastructure/logger"
	"world-vlog/usecase"

	"github.com/gin-gonic/gin"
)

const maxRandomCount = 50

// IVideoHandler defines the public travel video endpoints
type IVideoHandler interface {
	QueryVideos(ctx *gin.Context)
	RateVideo(ctx *gin.Context)
	RandomVideos(ctx *gin.Context)
}

type VideoHandler struct {
	videoUseCase  usecase.IVideoUseCase
	ratingUseCase usecase.IRatingUseCase
	poolUseCase   usecase.IRandomPoolUseCase
}

func NewVideoHandler(videoUseCase usecase.IVideoUseCase, ratingUseCase usecase.IRatingUseCase, poolUseCase usecase.IRandomPoolUseCase) IVideoHandler {
	return &VideoHandler{
		videoUseCase:  videoUseCase,
		ratingUseCase: ratingUseCase,
		poolUseCase:   poolUseCase,
	}
}

// QueryVideos handles GET /api/youtube
func (h *VideoHandler) QueryVideos(ctx *gin.Context) {
	req := dto.VideoQueryRequest{
		Place:      ctx.Query("q"),
		Mode:       model.Mode(ctx.Query("mode")),
		RegionCode: ctx.Query("regionCode"),
		MaxResults: usecase.DefaultResultCount,
	}
	if req.Place == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": `Query parameter "q" is required`})
		return
	}
	// older clients send isCampMode=true instead of mode=camp
	if req.Mode == "" && ctx.Query("isCampMode") == "true" {
		req.Mode = model.ModeCamp
	}
	if raw := ctx.Query("maxResults"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			req.MaxResults = val
		}
	}
	if raw := ctx.Query("localKeywords"); raw != "" {
		// e.g. ["東京 散歩 vlog", "Tokyo walking tour"]; unparseable values are ignored
		if err := json.Unmarshal([]byte(raw), &req.LocalKeywords); err != nil {
			logger.GetLogger().WithField("localKeywords", raw).Debug("Ignoring malformed localKeywords")
			req.LocalKeywords = nil
		}
	}

	response, err := h.videoUseCase.QueryVideos(ctx.Request.Context(), req)
	if err != nil {
		writeQueryError(ctx, err)
		return
	}
	if response.Videos == nil {
		response.Videos = []model.VideoResult{}
	}
	ctx.JSON(http.StatusOK, response)
}

func writeQueryError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidQuery):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": `Query parameter "q" is required`})
	case errors.Is(err, model.ErrQuotaExceeded):
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": model.ErrQuotaExceeded.Error()})
	case errors.Is(err, model.ErrMissingCredential):
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "YouTube API key is not configured"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": model.ErrSearchFailed.Error()})
	}
}

// RateVideo handles POST /api/rate
func (h *VideoHandler) RateVideo(ctx *gin.Context) {
	var req dto.RateVideoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.VideoID == "" || req.IsGood == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.ratingUseCase.RecordRating(ctx.Request.Context(), req.VideoID, *req.IsGood); err != nil {
		if errors.Is(err, model.ErrInvalidRating) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// RandomVideos handles GET /api/random
func (h *VideoHandler) RandomVideos(ctx *gin.Context) {
	count := usecase.DefaultRandomCount
	if raw := ctx.Query("count"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			count = min(val, maxRandomCount)
		}
	}
	mode := model.ModeScenic
	if raw := ctx.Query("mode"); raw != "" {
		mode = model.ParseMode(raw)
	}

	videos := h.poolUseCase.RandomVideos(ctx.Request.Context(), mode, count)
	if videos == nil {
		videos = []model.VideoResult{}
	}
	ctx.JSON(http.StatusOK, dto.RandomVideoResponse{Videos: videos})
}
