package handler_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitgrok.app/api/common/apperr"
	"gitgrok.app/api/internal/http/handler"
	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/service"
)

var _ = Describe("AuthHandler", func() {
	var (
		router *gin.Engine
		svc    *mockAuthService
	)

	BeforeEach(func() {
		router = gin.New()
		svc = &mockAuthService{}
		h := handler.NewAuthHandler(svc, handler.ErrorResponder{})
		router.POST("/auth/signup", h.Signup)
		router.POST("/auth/login", h.Login)
	})

	It("returns 201 with the user and token on signup", func() {
		svc.signupFn = func(_ context.Context, in service.SignupInput) (*model.User, string, error) {
			return &model.User{ID: 1234567890123, Name: in.Name, Email: in.Email, PasswordHash: "secret-hash"}, "jwt", nil
		}

		w := doJSON(router, http.MethodPost, "/auth/signup", map[string]string{
			"name": "Ada", "email": "ada@example.com", "password": "pw",
		})

		Expect(w.Code).To(Equal(http.StatusCreated))
		resp := decodeBody(w)
		Expect(resp["token"]).To(Equal("jwt"))
		user := resp["user"].(map[string]any)
		Expect(user["id"]).To(Equal("1234567890123"))
		Expect(user).NotTo(HaveKey("password_hash"))
		Expect(w.Body.String()).NotTo(ContainSubstring("secret-hash"))
	})

	It("returns 400 when the user already exists", func() {
		svc.signupFn = func(context.Context, service.SignupInput) (*model.User, string, error) {
			return nil, "", apperr.Wrap(apperr.KindValidation, "auth.signup", service.ErrUserExists, "User already exists")
		}

		w := doJSON(router, http.MethodPost, "/auth/signup", map[string]string{"name": "Ada"})

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		resp := decodeBody(w)
		Expect(resp["success"]).To(BeFalse())
		Expect(resp["message"]).To(Equal("User already exists"))
	})

	It("returns 400 on a malformed body", func() {
		req := doJSON(router, http.MethodPost, "/auth/login", "not an object")

		Expect(req.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeBody(req)["message"]).To(Equal("Invalid request body"))
	})

	It("returns 401 on bad credentials", func() {
		svc.loginFn = func(context.Context, string, string) (*model.User, string, error) {
			return nil, "", apperr.Wrap(apperr.KindAuth, "auth.login", fmt.Errorf("%w", service.ErrInvalidCredentials), "Invalid email or password")
		}

		w := doJSON(router, http.MethodPost, "/auth/login", map[string]string{"email": "a@b.c", "password": "x"})

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(decodeBody(w)["message"]).To(Equal("Invalid email or password"))
	})
})
