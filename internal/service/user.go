package service

import (
	"context"
	"fmt"
	"log/slog"

	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/store"
)

type UserService interface {
	Profile(ctx context.Context, userID int64) (*model.User, error)
}

type userService struct {
	userStore store.UserStore
}

func NewUserService(userStore store.UserStore) UserService {
	return &userService{userStore: userStore}
}

func (s *userService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load profile", "error", err, "user_id", userID)
		return nil, classify("user.profile", fmt.Errorf("getting user %d: %w", userID, err))
	}
	return user, nil
}
