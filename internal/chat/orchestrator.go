// Package chat answers questions about a repository by letting an LLM pick a
// GitHub tool, running it, and grounding a second LLM call in its result.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gitgrok.app/api/common/id"
	"gitgrok.app/api/common/llm"
	"gitgrok.app/api/common/logger"
	"gitgrok.app/api/internal/github"
	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/repourl"
)

var (
	ErrValidation    = errors.New("invalid chat request")
	ErrToolExecution = errors.New("tool execution failed")
	ErrLLM           = errors.New("llm call failed")
)

const (
	DefaultHistoryLimit = 5
	DefaultBotID        = "github-assistant"
)

// Store persists chat turns.
type Store interface {
	Append(ctx context.Context, turn *model.ChatTurn) error
	Recent(ctx context.Context, userID int64, owner, repo string, limit int) ([]model.ChatTurn, error)
}

type Question struct {
	UserID  int64
	Text    string
	RepoURL string
	// Params carries tool arguments (title, body, head, base, url, events)
	// and optional issueId / pullRequestId context.
	Params map[string]string
}

type Answer struct {
	Text     string
	ToolUsed ToolName
	History  []model.ChatTurn
}

type Options struct {
	BotID        string
	HistoryLimit int
	MaxTokens    int
}

type Orchestrator struct {
	github github.Client
	llm    llm.Client
	store  Store
	opts   Options
	now    func() time.Time
}

func NewOrchestrator(gh github.Client, client llm.Client, store Store, opts Options) *Orchestrator {
	if opts.BotID == "" {
		opts.BotID = DefaultBotID
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Orchestrator{
		github: gh,
		llm:    client,
		store:  store,
		opts:   opts,
		now:    time.Now,
	}
}

// Answer runs one question through tool selection, execution and answering.
// The user's turn is stored before any LLM or GitHub call so failed requests
// still leave a record of what was asked.
func (o *Orchestrator) Answer(ctx context.Context, q Question) (*Answer, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    &q.UserID,
		Component: "gitgrok.chat",
	})

	if q.UserID == 0 {
		return nil, fmt.Errorf("%w: user is required", ErrValidation)
	}
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}
	if strings.TrimSpace(q.RepoURL) == "" {
		return nil, fmt.Errorf("%w: repository url is required", ErrValidation)
	}

	ref, err := repourl.Parse(q.RepoURL)
	if err != nil {
		return nil, err
	}

	question := Sanitize(q.Text)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty after sanitizing", ErrValidation)
	}
	ref = repourl.Ref{Owner: Sanitize(ref.Owner), Repo: Sanitize(ref.Repo)}
	params, err := sanitizeParams(q.Params)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Owner: &ref.Owner, Repo: &ref.Repo})

	span := logger.StartSpan(ctx, "chat.answer")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", q.UserID),
		attribute.String("repo.full_name", ref.FullName()),
	)
	ctx = span.Context()

	chatCtx := model.ChatContext{
		Owner: ref.Owner,
		Repo:  ref.Repo,
	}
	if chatCtx.IssueID, err = optionalID(params, "issueId"); err != nil {
		return nil, err
	}
	if chatCtx.PullRequestID, err = optionalID(params, "pullRequestId"); err != nil {
		return nil, err
	}

	if err := o.persist(ctx, q.UserID, model.SenderUser, question, chatCtx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("storing question: %w", err)
	}

	name, err := o.selectTool(ctx, ref, question)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Tool: logger.Ptr(string(name))})
	span.SetAttributes(attribute.String("chat.tool", string(name)))

	tool, err := NewTool(name, params)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "tool rejected", "error", err)
		return nil, err
	}

	data, err := o.execute(ctx, ref, tool)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "tool execution failed", "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrToolExecution, name, err)
	}

	history, err := o.store.Recent(ctx, q.UserID, ref.Owner, ref.Repo, o.opts.HistoryLimit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("loading chat history: %w", err)
	}

	prompt, err := buildAnswerPrompt(ref, question, name, data, history)
	if err != nil {
		return nil, err
	}

	resp, err := o.llm.Complete(ctx, llm.Request{
		SystemPrompt: answerSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    o.opts.MaxTokens,
		SchemaName:   "chat_answer",
		Schema:       answerSchema,
	})
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "answer generation failed", "error", err)
		return nil, fmt.Errorf("%w: generating answer: %w", ErrLLM, err)
	}

	text := parseAnswer(resp.Text)

	chatCtx.SelectedTool = string(name)
	if err := o.persist(ctx, q.UserID, model.SenderBot, text, chatCtx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("storing answer: %w", err)
	}

	slog.InfoContext(ctx, "question answered",
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	return &Answer{
		Text:     text,
		ToolUsed: name,
		History:  history,
	}, nil
}

// History returns the most recent turns for the user and repository, newest first.
func (o *Orchestrator) History(ctx context.Context, userID int64, repoURL string, limit int) ([]model.ChatTurn, error) {
	ref, err := repourl.Parse(repoURL)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = o.opts.HistoryLimit
	}
	return o.store.Recent(ctx, userID, ref.Owner, ref.Repo, limit)
}

func (o *Orchestrator) selectTool(ctx context.Context, ref repourl.Ref, question string) (ToolName, error) {
	resp, err := o.llm.Complete(ctx, llm.Request{
		SystemPrompt: selectionSystemPrompt,
		Prompt:       buildSelectionPrompt(ref, question),
		MaxTokens:    20,
		Temperature:  llm.Temp(0),
	})
	if err != nil {
		slog.ErrorContext(ctx, "tool selection failed", "error", err)
		return "", fmt.Errorf("%w: selecting tool: %w", ErrLLM, err)
	}

	choice := normalizeSelection(resp.Text)
	name, ok := ParseToolName(choice)
	if !ok {
		slog.WarnContext(ctx, "llm selected unknown tool", "selection", choice)
		return "", fmt.Errorf("%w: unknown tool %q", ErrToolExecution, choice)
	}

	slog.DebugContext(ctx, "tool selected", "tool", name)
	return name, nil
}

func (o *Orchestrator) execute(ctx context.Context, ref repourl.Ref, tool Tool) (any, error) {
	span := logger.StartSpan(ctx, "chat.tool."+string(tool.Name()))
	defer span.End()
	ctx = span.Context()

	var (
		data any
		err  error
	)
	switch t := tool.(type) {
	case RepoInfo:
		data, err = o.github.RepoInfo(ctx, ref.Owner, ref.Repo)
	case RecentCommits:
		data, err = o.github.RecentCommits(ctx, ref.Owner, ref.Repo, t.Limit)
	case LatestCommitContributors:
		data, err = o.github.LatestCommitContributors(ctx, ref.Owner, ref.Repo)
	case AllContributors:
		data, err = o.github.AllContributors(ctx, ref.Owner, ref.Repo)
	case CodeStructure:
		data, err = o.github.CodeStructure(ctx, ref.Owner, ref.Repo)
	case ListOpenIssues:
		data, err = o.github.ListOpenIssues(ctx, ref.Owner, ref.Repo)
	case CreateIssue:
		data, err = o.github.CreateIssue(ctx, ref.Owner, ref.Repo, github.IssueInput{Title: t.Title, Body: t.Body})
	case CreatePullRequest:
		data, err = o.github.CreatePullRequest(ctx, ref.Owner, ref.Repo, github.PullRequestInput{
			Title: t.Title,
			Head:  t.Head,
			Base:  t.Base,
			Body:  t.Body,
		})
	case CreateRepoWebhook:
		data, err = o.github.CreateRepoWebhook(ctx, ref.Owner, ref.Repo, github.WebhookInput{
			URL:    t.URL,
			Events: t.Events,
			Secret: t.Secret,
		})
	case NoTool:
		data = map[string]string{"message": "No repository data was needed for this question."}
	default:
		err = fmt.Errorf("unhandled tool %T", tool)
	}
	if err != nil {
		span.RecordError(err)
	}
	return data, err
}

func (o *Orchestrator) persist(ctx context.Context, userID int64, sender model.SenderType, message string, chatCtx model.ChatContext) error {
	now := o.now().UTC()
	turn := &model.ChatTurn{
		ID:         id.New(),
		UserID:     userID,
		BotID:      &o.opts.BotID,
		Message:    model.ClampMessage(message),
		SenderType: sender,
		Context:    chatCtx,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return o.store.Append(ctx, turn)
}

func optionalID(params map[string]string, key string) (*int64, error) {
	raw := params[key]
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative integer", ErrValidation, key)
	}
	return &v, nil
}

type answerPayload struct {
	Response string `json:"response" jsonschema:"required,description=The answer to the user's question"`
}

var answerSchema = llm.GenerateSchema[answerPayload]()
