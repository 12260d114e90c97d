package service

import (
	"context"

	"gitgrok.app/api/internal/chat"
	"gitgrok.app/api/internal/model"
)

// Orchestrator answers repository questions. Implemented by chat.Orchestrator.
type Orchestrator interface {
	Answer(ctx context.Context, q chat.Question) (*chat.Answer, error)
	History(ctx context.Context, userID int64, repoURL string, limit int) ([]model.ChatTurn, error)
}

type ChatService interface {
	Ask(ctx context.Context, q chat.Question) (*chat.Answer, error)
	History(ctx context.Context, userID int64, repoURL string, limit int) ([]model.ChatTurn, error)
}

type chatService struct {
	orchestrator Orchestrator
}

func NewChatService(orchestrator Orchestrator) ChatService {
	return &chatService{orchestrator: orchestrator}
}

func (s *chatService) Ask(ctx context.Context, q chat.Question) (*chat.Answer, error) {
	answer, err := s.orchestrator.Answer(ctx, q)
	if err != nil {
		return nil, classify("chat.ask", err)
	}
	return answer, nil
}

func (s *chatService) History(ctx context.Context, userID int64, repoURL string, limit int) ([]model.ChatTurn, error) {
	if err := required("repoUrl", repoURL); err != nil {
		return nil, classify("chat.history", err)
	}
	turns, err := s.orchestrator.History(ctx, userID, repoURL, limit)
	if err != nil {
		return nil, classify("chat.history", err)
	}
	return turns, nil
}
