package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/http/dto"
	"gitgrok.app/api/internal/http/middleware"
	"gitgrok.app/api/internal/service"
)

type UserHandler struct {
	userService service.UserService
	errors      ErrorResponder
}

func NewUserHandler(userService service.UserService, errors ErrorResponder) *UserHandler {
	return &UserHandler{
		userService: userService,
		errors:      errors,
	}
}

func (h *UserHandler) Profile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.userService.Profile(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserResponse(user)})
}
