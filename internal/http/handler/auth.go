package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/http/dto"
	"gitgrok.app/api/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	errors      ErrorResponder
}

func NewAuthHandler(authService service.AuthService, errors ErrorResponder) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		errors:      errors,
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	user, token, err := h.authService.Signup(ctx, service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Message: "Signup successful",
		User:    dto.ToUserResponse(user),
		Token:   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.BadRequest(c, err)
		return
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		User:    dto.ToUserResponse(user),
		Token:   token,
	})
}
