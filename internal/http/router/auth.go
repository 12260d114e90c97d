package router

import (
	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/http/handler"
)

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
}
