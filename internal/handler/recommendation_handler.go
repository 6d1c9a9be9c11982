// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kanto-ml/internal/model"
	"kanto-ml/internal/service"
	"kanto-ml/pkg/log"
)

// RecommendationHandler 负责 /predict 与 /destinations。
type RecommendationHandler struct {
	recService service.RecommendationService
}

// NewRecommendationHandler 创建一个新的 RecommendationHandler 实例。
func NewRecommendationHandler(recService service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recService: recService}
}

// Predict 处理 POST /predict。缺少 city 时按空字符串处理，得到全零向量和空推荐列表。
func (h *RecommendationHandler) Predict(c *gin.Context) {
	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[RecommendationHandler] 请求体解析失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object with a string field \"city\""})
		return
	}

	resp, err := h.recService.Recommend(c.Request.Context(), req.City)
	if err != nil {
		log.Errorf("[RecommendationHandler] 预测失败, city: %q, error: %v", req.City, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListDestinations 处理 GET /destinations，返回完整数据集。
func (h *RecommendationHandler) ListDestinations(c *gin.Context) {
	c.JSON(http.StatusOK, h.recService.ListAll(c.Request.Context()))
}

// Health 处理 GET /healthz。
func (h *RecommendationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"catalog_size": h.recService.CatalogSize(),
		"model":        h.recService.ModelName(),
	})
}
