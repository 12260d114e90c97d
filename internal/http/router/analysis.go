package router

import (
	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/http/handler"
)

func AnalysisRouter(rg *gin.RouterGroup, requireAuth gin.HandlerFunc, h *handler.AnalysisHandler) {
	rg.Use(requireAuth)
	rg.POST("/repository", h.Analyze)
	rg.GET("/reports", h.List)
}
