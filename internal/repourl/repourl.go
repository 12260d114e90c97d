// Package repourl parses GitHub repository URLs into owner and repository name.
package repourl

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidURL = errors.New("invalid GitHub repository URL")

// Accepts https://github.com/owner/repo, http and www variants, an optional
// .git suffix and trailing slash, and git@github.com:owner/repo.
var repoPattern = regexp.MustCompile(
	`^(?:https?://(?:www\.)?github\.com/|git@github\.com:)([A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)/([A-Za-z0-9._-]+?)(?:\.git)?/?$`,
)

type Ref struct {
	Owner string
	Repo  string
}

// Parse extracts the repository reference from raw.
func Parse(raw string) (Ref, error) {
	m := repoPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if m[2] == "." || m[2] == ".." {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return Ref{Owner: m[1], Repo: m[2]}, nil
}

func (r Ref) CloneURL() string {
	return "https://github.com/" + r.Owner + "/" + r.Repo + ".git"
}

func (r Ref) FullName() string {
	return r.Owner + "/" + r.Repo
}

func (r Ref) String() string {
	return r.FullName()
}
