package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/palette"
)

// SessionCounter はヘルスチェックで返すセッション数
type SessionCounter interface {
	Len() int
}

// SystemHandler はセッションに依存しない参照系API
type SystemHandler struct {
	sessions SessionCounter
}

// NewSystemHandler は新しいSystemHandlerインスタンスを作成
func NewSystemHandler(sessions SessionCounter) *SystemHandler {
	return &SystemHandler{sessions: sessions}
}

// Health GET /api/health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "ProvinceMap-App",
		"sessions": h.sessions.Len(),
	})
}

// Legend GET /api/legend - 民族別の配色
func (h *SystemHandler) Legend(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"legend": palette.Legend()})
}

// BaseLayers GET /api/basemaps - 選べる背景地図
func (h *SystemHandler) BaseLayers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":  model.DefaultBaseLayerKey,
		"basemaps": model.BaseLayers,
	})
}
