// Package sandbox owns the on-disk working copies of cloned repositories.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"gitgrok.app/api/common/logger"
	"gitgrok.app/api/internal/repourl"
)

var ErrClone = errors.New("failed to clone repository")

// workspaceName matches directories created by Acquire:
// <owner>-<repo>-<unixmillis>-<random>.
var workspaceName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*-[A-Za-z0-9._-]+-[0-9]+-[0-9]+$`)

// Workspace is a cloned repository on disk. Release removes it; calling Release
// more than once is safe.
type Workspace struct {
	Path     string
	Owner    string
	Repo     string
	ClonedAt time.Time

	once    sync.Once
	release func() error
}

// NewWorkspace wraps an existing directory. release runs at most once.
func NewWorkspace(path, owner, repo string, clonedAt time.Time, release func() error) *Workspace {
	return &Workspace{Path: path, Owner: owner, Repo: repo, ClonedAt: clonedAt, release: release}
}

func (w *Workspace) Release() error {
	var err error
	w.once.Do(func() {
		if w.release != nil {
			err = w.release()
		}
	})
	return err
}

type Options struct {
	Root         string
	StaleAfter   time.Duration
	CloneTimeout time.Duration
}

type Manager struct {
	root         string
	cloner       Cloner
	staleAfter   time.Duration
	cloneTimeout time.Duration
	now          func() time.Time
}

func NewManager(opts Options, cloner Cloner) *Manager {
	staleAfter := opts.StaleAfter
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	return &Manager{
		root:         opts.Root,
		cloner:       cloner,
		staleAfter:   staleAfter,
		cloneTimeout: opts.CloneTimeout,
		now:          time.Now,
	}
}

func (m *Manager) Root() string {
	return m.root
}

// Acquire clones ref into a fresh directory under the root. The directory name
// embeds owner, repo and a millisecond timestamp plus a random suffix so
// concurrent calls for the same repository never collide.
func (m *Manager) Acquire(ctx context.Context, ref repourl.Ref) (*Workspace, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Owner:     &ref.Owner,
		Repo:      &ref.Repo,
		Component: "gitgrok.sandbox",
	})

	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("creating work dir %s: %w", m.root, err)
	}

	now := m.now()
	pattern := fmt.Sprintf("%s-%s-%d-*", ref.Owner, ref.Repo, now.UnixMilli())
	dir, err := os.MkdirTemp(m.root, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating workspace dir: %w", err)
	}

	cloneCtx := ctx
	if m.cloneTimeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, m.cloneTimeout)
		defer cancel()
	}

	span := logger.StartSpan(cloneCtx, "sandbox.clone")
	defer span.End()

	start := time.Now()
	if err := m.cloner.Clone(span.Context(), ref.CloneURL(), dir); err != nil {
		span.RecordError(err)
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			slog.WarnContext(ctx, "failed to remove partial clone", "error", rmErr, "path", dir)
		}
		return nil, fmt.Errorf("%w %s: %w", ErrClone, ref.FullName(), err)
	}

	slog.InfoContext(ctx, "repository cloned",
		"path", dir,
		"duration_ms", time.Since(start).Milliseconds())

	return NewWorkspace(dir, ref.Owner, ref.Repo, now, func() error {
		if err := os.RemoveAll(dir); err != nil {
			slog.WarnContext(ctx, "failed to remove workspace", "error", err, "path", dir)
			return fmt.Errorf("removing workspace %s: %w", dir, err)
		}
		slog.DebugContext(ctx, "workspace removed", "path", dir)
		return nil
	}), nil
}

// SweepStale removes workspace directories under the root whose modification
// time is older than the stale threshold. Entries not named like a workspace
// are left alone. It returns how many were removed.
func (m *Manager) SweepStale(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading work dir %s: %w", m.root, err)
	}

	cutoff := m.now().Add(-m.staleAfter)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() || !workspaceName.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(m.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
			continue
		}
		removed++
		slog.InfoContext(ctx, "removed stale workspace", "path", path, "modified_at", info.ModTime())
	}

	return removed, errors.Join(errs...)
}
