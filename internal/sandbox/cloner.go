package sandbox

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Cloner fetches a remote repository into an existing empty directory.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// GitCloner performs shallow single-branch clones with go-git.
type GitCloner struct {
	// Token authenticates against private repositories when set.
	Token string
}

func (c GitCloner) Clone(ctx context.Context, url, dir string) error {
	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if c.Token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: c.Token}
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return fmt.Errorf("git clone %s: %w", url, err)
	}
	return nil
}
