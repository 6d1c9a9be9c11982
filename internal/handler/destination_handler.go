package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kanto-ml/internal/middleware"
	"kanto-ml/internal/model"
	"kanto-ml/internal/repository"
	"kanto-ml/internal/service"
	"kanto-ml/pkg/log"
	"kanto-ml/pkg/token"
)

// DestinationHandler 负责景点存储相关的 API 请求。
type DestinationHandler struct {
	destService service.DestinationService
}

// NewDestinationHandler 创建一个新的 DestinationHandler 实例。
func NewDestinationHandler(destService service.DestinationService) *DestinationHandler {
	return &DestinationHandler{destService: destService}
}

// SaveDestinations 处理 POST /save_destinations。
func (h *DestinationHandler) SaveDestinations(c *gin.Context) {
	var req model.SaveDestinationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[DestinationHandler] 请求体解析失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "destinations must be a non-empty array of objects"})
		return
	}

	inputs := make([]model.DestinationInput, 0, len(req.Destinations))
	for i, in := range req.Destinations {
		if in == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("destinations[%d] must be an object", i)})
			return
		}
		inputs = append(inputs, *in)
	}

	n, err := h.destService.SaveMany(c.Request.Context(), inputs)
	if err != nil {
		if errors.Is(err, service.ErrNoDestinations) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var saveErr *service.SaveError
		if errors.As(err, &saveErr) {
			log.Errorf("[DestinationHandler] 批量写入中途失败, 已写入 %d 条: %v", saveErr.Inserted, saveErr.Err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%d destinations saved successfully", n),
	})
}

// ListStored 处理 GET /destinations/stored，返回存储中的景点。
func (h *DestinationHandler) ListStored(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > repository.MaxFindLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", repository.MaxFindLimit)})
			return
		}
		limit = v
	}

	found, err := h.destService.ListStored(c.Request.Context(), model.DestinationFilter{
		City:     c.Query("city"),
		Category: c.Query("category"),
		Limit:    limit,
	})
	if err != nil {
		log.Errorf("[DestinationHandler] 查询存储失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.DestinationListResponse{
		Success:      true,
		Total:        len(found),
		Destinations: found,
	})
}

// SyncDestinations 处理 POST /sync_destinations，需要管理员 token。
func (h *DestinationHandler) SyncDestinations(c *gin.Context) {
	requestedBy := ""
	if v, ok := c.Get(middleware.ClaimsKey); ok {
		if claims, ok := v.(*token.CustomClaims); ok {
			requestedBy = claims.Username
		}
	}

	task, err := h.destService.RequestSync(c.Request.Context(), c.Query("city"), requestedBy)
	if err != nil {
		log.Errorf("[DestinationHandler] 提交同步任务失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": task.TaskID,
		"message": "destination sync task accepted",
	})
}
