package service

import (
	"context"
	"fmt"
	"strings"

	"gitgrok.app/api/internal/github"
	"gitgrok.app/api/internal/model"
)

// RepoService exposes read and write GitHub operations addressed by owner and name.
type RepoService interface {
	ListRepos(ctx context.Context, username string) ([]model.RepoSummary, error)
	GetRepo(ctx context.Context, owner, repo string) (*model.RepoInfo, error)
	LatestContributors(ctx context.Context, owner, repo string) (*model.LatestContributors, error)
	AllContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error)
	CreateIssue(ctx context.Context, owner, repo string, in github.IssueInput) (*model.Issue, error)
}

type repoService struct {
	github github.Client
}

func NewRepoService(gh github.Client) RepoService {
	return &repoService{github: gh}
}

func (s *repoService) ListRepos(ctx context.Context, username string) ([]model.RepoSummary, error) {
	if err := required("username", username); err != nil {
		return nil, classify("repo.list", err)
	}
	repos, err := s.github.ListUserRepos(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, classify("repo.list", fmt.Errorf("listing repos of %s: %w", username, err))
	}
	return repos, nil
}

func (s *repoService) GetRepo(ctx context.Context, owner, repo string) (*model.RepoInfo, error) {
	if err := requiredRepo(owner, repo); err != nil {
		return nil, classify("repo.get", err)
	}
	info, err := s.github.RepoInfo(ctx, owner, repo)
	if err != nil {
		return nil, classify("repo.get", fmt.Errorf("getting %s/%s: %w", owner, repo, err))
	}
	return info, nil
}

func (s *repoService) LatestContributors(ctx context.Context, owner, repo string) (*model.LatestContributors, error) {
	if err := requiredRepo(owner, repo); err != nil {
		return nil, classify("repo.latest_contributors", err)
	}
	latest, err := s.github.LatestCommitContributors(ctx, owner, repo)
	if err != nil {
		return nil, classify("repo.latest_contributors", fmt.Errorf("getting latest contributors of %s/%s: %w", owner, repo, err))
	}
	return latest, nil
}

func (s *repoService) AllContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error) {
	if err := requiredRepo(owner, repo); err != nil {
		return nil, classify("repo.all_contributors", err)
	}
	contributors, err := s.github.AllContributors(ctx, owner, repo)
	if err != nil {
		return nil, classify("repo.all_contributors", fmt.Errorf("listing contributors of %s/%s: %w", owner, repo, err))
	}
	return contributors, nil
}

func (s *repoService) CreateIssue(ctx context.Context, owner, repo string, in github.IssueInput) (*model.Issue, error) {
	if err := requiredRepo(owner, repo); err != nil {
		return nil, classify("repo.create_issue", err)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, classify("repo.create_issue", fmt.Errorf("%w: Issue title is required", ErrMissingField))
	}
	issue, err := s.github.CreateIssue(ctx, owner, repo, in)
	if err != nil {
		return nil, classify("repo.create_issue", fmt.Errorf("creating issue on %s/%s: %w", owner, repo, err))
	}
	return issue, nil
}

func requiredRepo(owner, repo string) error {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(repo) == "" {
		return fmt.Errorf("%w: Repository owner and name are required", ErrMissingField)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrMissingField, field)
	}
	return nil
}
