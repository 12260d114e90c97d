package router

import (
	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/http/handler"
)

func UserRouter(rg *gin.RouterGroup, requireAuth gin.HandlerFunc, users *handler.UserHandler, repos *handler.RepoHandler, chat *handler.ChatHandler) {
	rg.GET("/profile", requireAuth, users.Profile)

	rg.GET("/repos", repos.ListRepos)
	rg.GET("/repo", repos.GetRepo)
	rg.POST("/issue", repos.CreateIssue)
	rg.GET("/latest_contributors", repos.LatestContributors)
	rg.GET("/all_contributors", repos.AllContributors)

	rg.POST("/chat", requireAuth, chat.Ask)
	rg.GET("/chat/history", requireAuth, chat.History)
}
