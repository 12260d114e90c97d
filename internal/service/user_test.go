package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gitgrok.app/api/common/apperr"
	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/service"
	"gitgrok.app/api/internal/store"
)

var _ = Describe("UserService", func() {
	var (
		ctx       context.Context
		mockStore *mockUserStore
		svc       service.UserService
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockStore = &mockUserStore{}
		svc = service.NewUserService(mockStore)
	})

	Describe("Profile", func() {
		It("returns the stored user", func() {
			mockStore.getByIDFn = func(_ context.Context, id int64) (*model.User, error) {
				return &model.User{ID: id, Name: "Ada", Email: "ada@example.com"}, nil
			}

			user, err := svc.Profile(ctx, 7)

			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(int64(7)))
			Expect(user.Name).To(Equal("Ada"))
		})

		It("maps a missing user to not found", func() {
			user, err := svc.Profile(ctx, 7)

			Expect(user).To(BeNil())
			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
			Expect(apperr.KindOf(err)).To(Equal(apperr.KindNotFound))
		})
	})
})
