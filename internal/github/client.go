// Package github wraps the GitHub REST API calls the service needs.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"gitgrok.app/api/internal/model"
)

var (
	ErrNotFound = errors.New("github resource not found")
	ErrUpstream = errors.New("github request failed")
)

const (
	defaultCommitLimit = 10
	maxTreeEntries     = 300
	maxOpenIssues      = 30
)

type Client interface {
	ListUserRepos(ctx context.Context, username string) ([]model.RepoSummary, error)
	RepoInfo(ctx context.Context, owner, repo string) (*model.RepoInfo, error)
	RecentCommits(ctx context.Context, owner, repo string, limit int) ([]model.Commit, error)
	LatestCommitContributors(ctx context.Context, owner, repo string) (*model.LatestContributors, error)
	AllContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error)
	CodeStructure(ctx context.Context, owner, repo string) ([]model.TreeEntry, error)
	ListOpenIssues(ctx context.Context, owner, repo string) ([]model.Issue, error)
	CreateIssue(ctx context.Context, owner, repo string, in IssueInput) (*model.Issue, error)
	CreatePullRequest(ctx context.Context, owner, repo string, in PullRequestInput) (*model.PullRequest, error)
	CreateRepoWebhook(ctx context.Context, owner, repo string, in WebhookInput) (*model.Webhook, error)
}

type IssueInput struct {
	Title string
	Body  string
}

type PullRequestInput struct {
	Title string
	Head  string
	Base  string
	Body  string
}

type WebhookInput struct {
	URL    string
	Events []string
	Secret string
}

type Options struct {
	Token string
	// BaseURL overrides https://api.github.com/, e.g. for GitHub Enterprise.
	BaseURL string
}

type client struct {
	gh *gh.Client
}

func New(opts Options) (Client, error) {
	var httpClient *http.Client
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	c := gh.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing github base url: %w", err)
		}
		c.BaseURL = u
	}

	return &client{gh: c}, nil
}

func (c *client) ListUserRepos(ctx context.Context, username string) ([]model.RepoSummary, error) {
	repos, _, err := c.gh.Repositories.ListByUser(ctx, username, &gh.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("listing repos for %s: %w", username, classify(err))
	}

	out := make([]model.RepoSummary, 0, len(repos))
	for _, r := range repos {
		out = append(out, model.RepoSummary{
			Name:        r.GetName(),
			FullName:    r.GetFullName(),
			Description: r.GetDescription(),
			Private:     r.GetPrivate(),
			URL:         r.GetHTMLURL(),
		})
	}
	return out, nil
}

func (c *client) RepoInfo(ctx context.Context, owner, repo string) (*model.RepoInfo, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching repo %s/%s: %w", owner, repo, classify(err))
	}

	license := "No license"
	if r.GetLicense().GetName() != "" {
		license = r.GetLicense().GetName()
	}

	return &model.RepoInfo{
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		Language:    r.GetLanguage(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		License:     license,
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
		Visibility:  r.GetVisibility(),
		URL:         r.GetHTMLURL(),
	}, nil
}

func (c *client) RecentCommits(ctx context.Context, owner, repo string, limit int) ([]model.Commit, error) {
	if limit <= 0 {
		limit = defaultCommitLimit
	}

	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("listing commits for %s/%s: %w", owner, repo, classify(err))
	}

	out := make([]model.Commit, 0, len(commits))
	for _, rc := range commits {
		out = append(out, model.Commit{
			SHA:     rc.GetSHA(),
			Message: rc.GetCommit().GetMessage(),
			Author:  firstNonEmpty(rc.GetAuthor().GetLogin(), rc.GetCommit().GetAuthor().GetName()),
			Date:    rc.GetCommit().GetAuthor().GetDate().Time,
			URL:     rc.GetHTMLURL(),
		})
	}
	return out, nil
}

// LatestCommitContributors reports the author and committer of the default
// branch head, preferring GitHub logins over git names.
func (c *client) LatestCommitContributors(ctx context.Context, owner, repo string) (*model.LatestContributors, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching default branch for %s/%s: %w", owner, repo, classify(err))
	}

	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, repo, &gh.CommitsListOptions{
		SHA:         r.GetDefaultBranch(),
		ListOptions: gh.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching latest commit for %s/%s: %w", owner, repo, classify(err))
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("no commits on %s/%s: %w", owner, repo, ErrNotFound)
	}

	latest := commits[0]
	return &model.LatestContributors{
		Author:    firstNonEmpty(latest.GetAuthor().GetLogin(), latest.GetCommit().GetAuthor().GetName()),
		Committer: firstNonEmpty(latest.GetCommitter().GetLogin(), latest.GetCommit().GetCommitter().GetName()),
	}, nil
}

func (c *client) AllContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error) {
	contributors, _, err := c.gh.Repositories.ListContributors(ctx, owner, repo, &gh.ListContributorsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	})
	if err != nil {
		return nil, fmt.Errorf("listing contributors for %s/%s: %w", owner, repo, classify(err))
	}

	out := make([]model.Contributor, 0, len(contributors))
	for _, ct := range contributors {
		out = append(out, model.Contributor{
			Login:         ct.GetLogin(),
			Contributions: ct.GetContributions(),
		})
	}
	return out, nil
}

// CodeStructure lists the default branch tree, capped to keep prompts small.
func (c *client) CodeStructure(ctx context.Context, owner, repo string) ([]model.TreeEntry, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching default branch for %s/%s: %w", owner, repo, classify(err))
	}

	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, r.GetDefaultBranch(), true)
	if err != nil {
		return nil, fmt.Errorf("fetching tree for %s/%s: %w", owner, repo, classify(err))
	}

	out := make([]model.TreeEntry, 0, min(len(tree.Entries), maxTreeEntries))
	for _, e := range tree.Entries {
		if len(out) == maxTreeEntries {
			break
		}
		out = append(out, model.TreeEntry{
			Path: e.GetPath(),
			Type: e.GetType(),
			Size: e.GetSize(),
		})
	}
	return out, nil
}

func (c *client) ListOpenIssues(ctx context.Context, owner, repo string) ([]model.Issue, error) {
	issues, _, err := c.gh.Issues.ListByRepo(ctx, owner, repo, &gh.IssueListByRepoOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: maxOpenIssues},
	})
	if err != nil {
		return nil, fmt.Errorf("listing issues for %s/%s: %w", owner, repo, classify(err))
	}

	out := make([]model.Issue, 0, len(issues))
	for _, is := range issues {
		// The issues endpoint also returns pull requests.
		if is.IsPullRequest() {
			continue
		}
		out = append(out, toIssue(is))
	}
	return out, nil
}

func (c *client) CreateIssue(ctx context.Context, owner, repo string, in IssueInput) (*model.Issue, error) {
	is, _, err := c.gh.Issues.Create(ctx, owner, repo, &gh.IssueRequest{
		Title: gh.Ptr(in.Title),
		Body:  gh.Ptr(in.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("creating issue in %s/%s: %w", owner, repo, classify(err))
	}

	issue := toIssue(is)
	return &issue, nil
}

func (c *client) CreatePullRequest(ctx context.Context, owner, repo string, in PullRequestInput) (*model.PullRequest, error) {
	req := &gh.NewPullRequest{
		Title: gh.Ptr(in.Title),
		Head:  gh.Ptr(in.Head),
		Base:  gh.Ptr(in.Base),
	}
	if in.Body != "" {
		req.Body = gh.Ptr(in.Body)
	}

	pr, _, err := c.gh.PullRequests.Create(ctx, owner, repo, req)
	if err != nil {
		return nil, fmt.Errorf("creating pull request in %s/%s: %w", owner, repo, classify(err))
	}

	return &model.PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		State:  pr.GetState(),
		Head:   pr.GetHead().GetRef(),
		Base:   pr.GetBase().GetRef(),
		URL:    pr.GetHTMLURL(),
	}, nil
}

func (c *client) CreateRepoWebhook(ctx context.Context, owner, repo string, in WebhookInput) (*model.Webhook, error) {
	events := in.Events
	if len(events) == 0 {
		events = []string{"push"}
	}

	cfg := &gh.HookConfig{
		URL:         gh.Ptr(in.URL),
		ContentType: gh.Ptr("json"),
	}
	if in.Secret != "" {
		cfg.Secret = gh.Ptr(in.Secret)
	}

	hook, _, err := c.gh.Repositories.CreateHook(ctx, owner, repo, &gh.Hook{
		Config: cfg,
		Events: events,
		Active: gh.Ptr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("creating webhook in %s/%s: %w", owner, repo, classify(err))
	}

	return &model.Webhook{
		ID:     hook.GetID(),
		URL:    hook.GetConfig().GetURL(),
		Events: hook.Events,
		Active: hook.GetActive(),
	}, nil
}

func toIssue(is *gh.Issue) model.Issue {
	labels := make([]string, 0, len(is.Labels))
	for _, l := range is.Labels {
		labels = append(labels, l.GetName())
	}
	return model.Issue{
		Number: is.GetNumber(),
		Title:  is.GetTitle(),
		State:  is.GetState(),
		Author: is.GetUser().GetLogin(),
		URL:    is.GetHTMLURL(),
		Labels: labels,
		Opened: is.GetCreatedAt().Time,
	}
}

// classify tags err with ErrNotFound for 404 responses and ErrUpstream otherwise.
func classify(err error) error {
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
