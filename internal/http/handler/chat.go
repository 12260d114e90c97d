package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/chat"
	"gitgrok.app/api/internal/http/dto"
	"gitgrok.app/api/internal/http/middleware"
	"gitgrok.app/api/internal/service"
)

type ChatHandler struct {
	chatService service.ChatService
	errors      ErrorResponder
}

func NewChatHandler(chatService service.ChatService, errors ErrorResponder) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		errors:      errors,
	}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	answer, err := h.chatService.Ask(ctx, chat.Question{
		UserID:  middleware.GetUserID(ctx),
		Text:    req.Question,
		RepoURL: req.RepoURL,
		Params:  req.Params(),
	})
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ChatResponse{
		Answer:   answer.Text,
		ToolUsed: string(answer.ToolUsed),
		History:  dto.ToChatTurnResponses(answer.History),
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatHistoryRequest
	if err := bindFlexible(c, &req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	turns, err := h.chatService.History(ctx, middleware.GetUserID(ctx), req.RepoURL, req.Limit)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": dto.ToChatTurnResponses(turns)})
}
