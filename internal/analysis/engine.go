// Package analysis turns a GitHub repository URL into a markdown report by
// cloning it, sampling its source files under fixed bounds and asking an LLM.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gitgrok.app/api/common/llm"
	"gitgrok.app/api/common/logger"
	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/repourl"
	"gitgrok.app/api/internal/sandbox"
)

var (
	ErrInvalidURL     = errors.New("invalid repository url")
	ErrAnalysisFailed = errors.New("repository analysis failed")
)

// Sandbox provides disposable working copies of repositories.
type Sandbox interface {
	SweepStale(ctx context.Context) (int, error)
	Acquire(ctx context.Context, ref repourl.Ref) (*sandbox.Workspace, error)
}

type Options struct {
	Discovery DiscoveryLimits
	Sampling  SamplingLimits
	MaxTokens int
}

type Engine struct {
	sandbox Sandbox
	llm     llm.Client
	opts    Options
	now     func() time.Time
}

func NewEngine(sb Sandbox, client llm.Client, opts Options) *Engine {
	if opts.Discovery == (DiscoveryLimits{}) {
		opts.Discovery = DefaultDiscoveryLimits
	}
	if opts.Sampling == (SamplingLimits{}) {
		opts.Sampling = DefaultSamplingLimits
	}
	return &Engine{
		sandbox: sb,
		llm:     client,
		opts:    opts,
		now:     time.Now,
	}
}

// Analyze clones the repository at rawURL, samples its sources and returns the
// generated report. The working copy is removed before Analyze returns.
func (e *Engine) Analyze(ctx context.Context, rawURL string) (*model.AnalysisReport, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "gitgrok.analysis"})

	if n, err := e.sandbox.SweepStale(ctx); err != nil {
		slog.WarnContext(ctx, "stale workspace sweep failed", "error", err, "removed", n)
	} else if n > 0 {
		slog.InfoContext(ctx, "stale workspaces removed", "removed", n)
	}

	ref, err := repourl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Owner: &ref.Owner, Repo: &ref.Repo})

	span := logger.StartSpan(ctx, "analysis.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("repo.owner", ref.Owner),
		attribute.String("repo.name", ref.Repo),
	)
	ctx = span.Context()

	ws, err := e.sandbox.Acquire(ctx, ref)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "clone failed", "error", err)
		return nil, err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			slog.WarnContext(ctx, "workspace cleanup failed", "error", err, "path", ws.Path)
		}
	}()

	discovered, err := Discover(ws.Path, e.opts.Discovery)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: discovering files: %w", ErrAnalysisFailed, err)
	}

	sampled, err := Sample(discovered, e.opts.Sampling)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "sampling failed", "error", err)
		return nil, fmt.Errorf("%w: sampling files: %w", ErrAnalysisFailed, err)
	}

	slog.InfoContext(ctx, "repository sampled",
		"files_discovered", len(discovered),
		"files_sampled", len(sampled))
	span.SetAttributes(
		attribute.Int("analysis.files_discovered", len(discovered)),
		attribute.Int("analysis.files_sampled", len(sampled)),
	)

	prompt, err := BuildReportPrompt(ref, sampled)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	start := time.Now()
	resp, err := e.llm.Complete(ctx, llm.Request{
		SystemPrompt: reportSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    e.opts.MaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "report generation failed", "error", err)
		return nil, fmt.Errorf("%w: generating report: %w", ErrAnalysisFailed, err)
	}

	slog.InfoContext(ctx, "analysis report generated",
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	return &model.AnalysisReport{
		Owner:           ref.Owner,
		Repo:            ref.Repo,
		Markdown:        resp.Text,
		FilesDiscovered: len(discovered),
		FilesAnalyzed:   len(sampled),
		CompletedAt:     e.now().UTC(),
	}, nil
}
