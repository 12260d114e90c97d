package service

import (
	"gitgrok.app/api/core/config"
	"gitgrok.app/api/internal/github"
	"gitgrok.app/api/internal/store"
)

type Services struct {
	stores       *store.Stores
	github       github.Client
	analyzer     Analyzer
	orchestrator Orchestrator
	jwtCfg       config.JWTConfig
}

func NewServices(stores *store.Stores, gh github.Client, analyzer Analyzer, orchestrator Orchestrator, jwtCfg config.JWTConfig) *Services {
	return &Services{
		stores:       stores,
		github:       gh,
		analyzer:     analyzer,
		orchestrator: orchestrator,
		jwtCfg:       jwtCfg,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.jwtCfg)
}

func (s *Services) Users() UserService {
	return NewUserService(s.stores.Users())
}

func (s *Services) Repos() RepoService {
	return NewRepoService(s.github)
}

func (s *Services) Analysis() AnalysisService {
	return NewAnalysisService(s.analyzer, s.stores.Reports())
}

func (s *Services) Chat() ChatService {
	return NewChatService(s.orchestrator)
}
